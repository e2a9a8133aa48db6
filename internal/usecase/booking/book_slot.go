package booking

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type BookSlotInput struct {
	ProviderID string
	Date       string
	StartTime  string
	PatientID  string
	Notes      string
}

// ======================================================
// USE CASE
// ======================================================

type BookSlot struct {
	source slotSource
	audit  *audit.Dispatcher
}

func NewBookSlot(
	directory calendar.Directory,
	holidays calendar.HolidaySource,
	ledger reservation.Ledger,
	clock timezone.Clock,
	audit *audit.Dispatcher,
) *BookSlot {
	return &BookSlot{
		source: newSlotSource(directory, holidays, ledger, clock),
		audit:  audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute holds a slot for the patient. The availability check up front only
// gives stale clients a fast answer; the ledger claim decides the race.
func (uc *BookSlot) Execute(
	ctx context.Context,
	in BookSlotInput,
) (*reservation.Reservation, error) {

	// --------------------------------------------------
	// 1. Input validation, before anything is read
	// --------------------------------------------------
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	startTime := strings.TrimSpace(in.StartTime)
	minute, err := calendar.ParseClock(startTime)
	if err != nil {
		return nil, ErrInvalidTime
	}

	if strings.TrimSpace(in.PatientID) == "" {
		return nil, reservation.ErrInvalidPatient
	}

	// --------------------------------------------------
	// 2. Calendar and candidates
	// --------------------------------------------------
	cal, band, candidates, err := uc.source.candidates(ctx, in.ProviderID, date)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, reservation.ErrSlotNotAvailable
	}

	if !slot.Aligned(band, cal.Granularity(), minute) {
		return nil, ErrGranularityMismatch
	}

	// --------------------------------------------------
	// 3. Advisory check
	// --------------------------------------------------
	if _, ok := slot.Find(candidates, startTime); !ok {
		return nil, reservation.ErrSlotNotAvailable
	}

	free, err := uc.source.available(ctx, in.ProviderID, date, candidates)
	if err != nil {
		return nil, err
	}
	if _, ok := slot.Find(free, startTime); !ok {
		return nil, reservation.ErrSlotConflict
	}

	// --------------------------------------------------
	// 4. Atomic claim
	// --------------------------------------------------
	r, err := reservation.Reserve(ctx, uc.source.ledger, reservation.ReserveInput{
		ProviderID: in.ProviderID,
		Date:       date,
		StartTime:  startTime,
		PatientID:  in.PatientID,
		Notes:      in.Notes,
		Offered:    candidates,
		Now:        uc.source.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ProviderID: r.ProviderID,
		Action:     audit.ActionReservationHeld,
		Entity:     audit.EntityReservation,
		EntityID:   r.ID,
		Metadata: map[string]any{
			"date":       r.Date.String(),
			"start_time": r.StartTime(),
			"patient_id": r.PatientID,
		},
	})

	return r, nil
}
