package reservation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

var (
	ErrSlotConflict        = httperr.ErrBusiness(CodeSlotConflict)
	ErrSlotNotOffered      = httperr.ErrBusiness(CodeSlotNotOffered)
	ErrSlotNotAvailable    = httperr.ErrBusiness(CodeSlotNotAvailable)
	ErrInvalidState        = httperr.ErrBusiness(CodeInvalidState)
	ErrReservationNotFound = httperr.ErrBusiness(CodeReservationNotFound)
	ErrInvalidPatient      = httperr.ErrBusiness(CodeInvalidPatient)
)

// Ledger is the authoritative store of claimed slots. Claim must be atomic per
// Key: at most one Held or Confirmed reservation may exist for a key at any
// instant, and a failed Claim leaves nothing behind.
type Ledger interface {
	// -------- Claims --------
	ListClaimed(
		ctx context.Context,
		providerID string,
		date calendar.Date,
	) ([]int, error)

	// Claim stores r if its key is free, else ErrSlotConflict.
	Claim(
		ctx context.Context,
		r *Reservation,
	) error

	// -------- Lookup --------
	Get(
		ctx context.Context,
		id string,
	) (*Reservation, error)

	ListByPatient(
		ctx context.Context,
		patientID string,
	) ([]Reservation, error)

	ListByProviderDate(
		ctx context.Context,
		providerID string,
		date calendar.Date,
	) ([]Reservation, error)

	// -------- State change --------

	// Transition moves the reservation to `to` if its current state is one of
	// from, returning the updated record. A mismatch yields ErrInvalidState
	// together with the unchanged record.
	Transition(
		ctx context.Context,
		id string,
		from []Status,
		to Status,
		at time.Time,
	) (*Reservation, error)

	// ExpireHeld expires every hold created before cutoff and returns them.
	ExpireHeld(
		ctx context.Context,
		cutoff time.Time,
		at time.Time,
	) ([]Reservation, error)
}

// ===============================
// Reserve
// ===============================

type ReserveInput struct {
	ProviderID string
	Date       calendar.Date
	StartTime  string
	PatientID  string
	Notes      string

	// Offered is the generator's current candidate set for the provider-day,
	// before claimed slots are removed.
	Offered []slot.Slot

	Now time.Time
}

// NewHeld builds a fresh hold for the given slot.
func NewHeld(providerID string, date calendar.Date, minute int, patientID, notes string, now time.Time) *Reservation {
	return &Reservation{
		ID:          uuid.NewString(),
		ProviderID:  providerID,
		Date:        date,
		StartMinute: minute,
		PatientID:   patientID,
		State:       InitialStatus(),
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Reserve claims StartTime for the patient. The key must be among the
// generator's current candidates; the ledger arbitrates the race.
func Reserve(ctx context.Context, ledger Ledger, in ReserveInput) (*Reservation, error) {
	patientID := strings.TrimSpace(in.PatientID)
	if patientID == "" {
		return nil, ErrInvalidPatient
	}

	s, ok := slot.Find(in.Offered, in.StartTime)
	if !ok {
		return nil, ErrSlotNotOffered
	}

	r := NewHeld(in.ProviderID, in.Date, s.Minute, patientID, strings.TrimSpace(in.Notes), in.Now)
	if err := ledger.Claim(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
