package reservation

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

const (
	CodeSlotConflict        = "slot_conflict"
	CodeSlotNotOffered      = "slot_not_offered"
	CodeSlotNotAvailable    = "slot_not_available"
	CodeInvalidState        = "invalid_state"
	CodeReservationNotFound = "reservation_not_found"
	CodeInvalidPatient      = "invalid_patient"
)

type Reservation struct {
	ID         string
	ProviderID string
	Date       calendar.Date

	// Minutes from midnight of Date; past 1440 for overnight spill.
	StartMinute int

	PatientID string
	State     Status
	Notes     string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	ExpiredAt   *time.Time
}

func (r *Reservation) StartTime() string {
	return calendar.FormatClock(r.StartMinute)
}

func (r *Reservation) NextDay() bool {
	return r.StartMinute >= calendar.MinutesPerDay
}

func (r *Reservation) Key() Key {
	return Key{ProviderID: r.ProviderID, Date: r.Date, StartMinute: r.StartMinute}
}

// Key identifies one claimable slot.
type Key struct {
	ProviderID  string
	Date        calendar.Date
	StartMinute int
}

// ===============================
// Domain Actions
// ===============================

func Confirm(r *Reservation, now time.Time) error {
	if err := CanConfirm(r.State); err != nil {
		return err
	}

	r.State = StatusConfirmed
	r.ConfirmedAt = &now
	r.UpdatedAt = now
	return nil
}

func Cancel(r *Reservation, now time.Time) error {
	if err := CanCancel(r.State); err != nil {
		return err
	}

	r.State = StatusCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now
	return nil
}

func Expire(r *Reservation, now time.Time) error {
	if err := CanExpire(r.State); err != nil {
		return err
	}

	r.State = StatusExpired
	r.ExpiredAt = &now
	r.UpdatedAt = now
	return nil
}

// Apply runs the action that moves r into to.
func Apply(r *Reservation, to Status, now time.Time) error {
	switch to {
	case StatusConfirmed:
		return Confirm(r, now)
	case StatusCancelled:
		return Cancel(r, now)
	case StatusExpired:
		return Expire(r, now)
	}
	return httperr.ErrBusiness(CodeInvalidState)
}
