package repository

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// MemoryUserRepository backs admin login when no database is configured.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID uint
	users  map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]models.User{}}
}

func (r *MemoryUserRepository) FindByEmail(
	_ context.Context,
	email string,
) (*models.User, error) {

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) EnsureAdmin(
	_ context.Context,
	email string,
	password string,
) error {

	user, err := newAdmin(email, password)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return nil
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = *user
	return nil
}
