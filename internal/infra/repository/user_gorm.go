package repository

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

const RoleAdmin = "admin"

var ErrUserNotFound = httperr.ErrBusiness("user_not_found")

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) FindByEmail(
	ctx context.Context,
	email string,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, httperr.ErrInternal("find user", err)
	}
	return &user, nil
}

// EnsureAdmin creates the admin account if the email is not taken yet.
func (r *UserGormRepository) EnsureAdmin(
	ctx context.Context,
	email string,
	password string,
) error {

	user, err := newAdmin(email, password)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user).Error; err != nil {
		return httperr.ErrInternal("seed admin", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newAdmin(email, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, httperr.ErrInternal("hash password", err)
	}

	email = normalizeEmail(email)
	return &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         RoleAdmin,
	}, nil
}
