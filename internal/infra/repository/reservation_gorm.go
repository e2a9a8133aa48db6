package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

const pgUniqueViolation = "23505"

// ReservationGormRepository is the Postgres ledger. Per-key atomicity comes from
// the partial unique index on (provider_id, slot_date, start_minute) over live
// states, so a claim is a single INSERT.
type ReservationGormRepository struct {
	db *gorm.DB
}

func NewReservationGormRepository(db *gorm.DB) *ReservationGormRepository {
	return &ReservationGormRepository{db: db}
}

// --------------------------------------------------
// Mapping
// --------------------------------------------------

func toReservationModel(r *domain.Reservation) *models.Reservation {
	return &models.Reservation{
		ID:          r.ID,
		ProviderID:  r.ProviderID,
		SlotDate:    r.Date.Midnight(time.UTC),
		StartMinute: r.StartMinute,
		PatientID:   r.PatientID,
		State:       string(r.State),
		Notes:       r.Notes,
		ConfirmedAt: r.ConfirmedAt,
		CancelledAt: r.CancelledAt,
		ExpiredAt:   r.ExpiredAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toReservation(m *models.Reservation) domain.Reservation {
	return domain.Reservation{
		ID:          m.ID,
		ProviderID:  m.ProviderID,
		Date:        calendar.DateOf(m.SlotDate.UTC()),
		StartMinute: m.StartMinute,
		PatientID:   m.PatientID,
		State:       domain.Status(m.State),
		Notes:       m.Notes,
		ConfirmedAt: m.ConfirmedAt,
		CancelledAt: m.CancelledAt,
		ExpiredAt:   m.ExpiredAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toReservations(rows []models.Reservation) []domain.Reservation {
	out := make([]domain.Reservation, len(rows))
	for i := range rows {
		out[i] = toReservation(&rows[i])
	}
	return out
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func stateStrings(states []domain.Status) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}

// --------------------------------------------------
// Claims
// --------------------------------------------------

func (r *ReservationGormRepository) ListClaimed(
	ctx context.Context,
	providerID string,
	date calendar.Date,
) ([]int, error) {

	claimed := []int{}
	if err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where(
			"provider_id = ? AND slot_date = ? AND state IN ?",
			providerID, date.String(), stateStrings(domain.ActiveStatuses),
		).
		Order("start_minute ASC").
		Pluck("start_minute", &claimed).Error; err != nil {
		return nil, httperr.ErrInternal("list claimed", err)
	}

	return claimed, nil
}

func (r *ReservationGormRepository) Claim(
	ctx context.Context,
	res *domain.Reservation,
) error {

	if err := r.db.WithContext(ctx).Create(toReservationModel(res)).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlotConflict
		}
		return httperr.ErrInternal("claim slot", err)
	}
	return nil
}

// --------------------------------------------------
// Lookup
// --------------------------------------------------

func (r *ReservationGormRepository) Get(
	ctx context.Context,
	id string,
) (*domain.Reservation, error) {

	var m models.Reservation
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, httperr.ErrInternal("get reservation", err)
	}

	res := toReservation(&m)
	return &res, nil
}

func (r *ReservationGormRepository) ListByPatient(
	ctx context.Context,
	patientID string,
) ([]domain.Reservation, error) {

	var rows []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, httperr.ErrInternal("list patient reservations", err)
	}

	return toReservations(rows), nil
}

func (r *ReservationGormRepository) ListByProviderDate(
	ctx context.Context,
	providerID string,
	date calendar.Date,
) ([]domain.Reservation, error) {

	var rows []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND slot_date = ?", providerID, date.String()).
		Order("start_minute ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, httperr.ErrInternal("list provider day", err)
	}

	return toReservations(rows), nil
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func stampColumn(to domain.Status) string {
	switch to {
	case domain.StatusConfirmed:
		return "confirmed_at"
	case domain.StatusCancelled:
		return "cancelled_at"
	case domain.StatusExpired:
		return "expired_at"
	}
	return ""
}

// Transition is a single conditional UPDATE; the row only moves when its
// current state is still one of from.
func (r *ReservationGormRepository) Transition(
	ctx context.Context,
	id string,
	from []domain.Status,
	to domain.Status,
	at time.Time,
) (*domain.Reservation, error) {

	allowed := make([]domain.Status, 0, len(from))
	for _, s := range domain.Sources(to) {
		if statusIn(s, from) {
			allowed = append(allowed, s)
		}
	}

	if len(allowed) > 0 {
		var rows []models.Reservation
		res := r.db.WithContext(ctx).
			Model(&rows).
			Clauses(clause.Returning{}).
			Where("id = ? AND state IN ?", id, stateStrings(allowed)).
			Updates(map[string]any{
				"state":          string(to),
				stampColumn(to): at,
				"updated_at":     at,
			})
		if res.Error != nil {
			return nil, httperr.ErrInternal("transition reservation", res.Error)
		}
		if res.RowsAffected == 1 && len(rows) == 1 {
			out := toReservation(&rows[0])
			return &out, nil
		}
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return current, domain.ErrInvalidState
}

func (r *ReservationGormRepository) ExpireHeld(
	ctx context.Context,
	cutoff time.Time,
	at time.Time,
) ([]domain.Reservation, error) {

	var rows []models.Reservation
	if err := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("state = ? AND created_at < ?", string(domain.StatusHeld), cutoff).
		Updates(map[string]any{
			"state":      string(domain.StatusExpired),
			"expired_at": at,
			"updated_at": at,
		}).Error; err != nil {
		return nil, httperr.ErrInternal("expire holds", err)
	}

	return toReservations(rows), nil
}

// Compile-time check
var _ domain.Ledger = (*ReservationGormRepository)(nil)
