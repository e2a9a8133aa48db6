package booking

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const DefaultHoldTTL = 10 * time.Minute

type ConfirmReservation struct {
	ledger  domain.Ledger
	clock   timezone.Clock
	holdTTL time.Duration
	audit   *audit.Dispatcher
}

func NewConfirmReservation(
	ledger domain.Ledger,
	clock timezone.Clock,
	holdTTL time.Duration,
	audit *audit.Dispatcher,
) *ConfirmReservation {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	return &ConfirmReservation{
		ledger:  ledger,
		clock:   clock,
		holdTTL: holdTTL,
		audit:   audit,
	}
}

// Execute turns a hold into a confirmed reservation. A hold past its window is
// expired on the spot, so confirmation never outlives the sweep interval.
func (uc *ConfirmReservation) Execute(
	ctx context.Context,
	reservationID string,
) (*domain.Reservation, error) {

	current, err := uc.ledger.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	switch current.State {
	case domain.StatusConfirmed:
		return current, nil
	case domain.StatusHeld:
	default:
		return nil, domain.ErrInvalidState
	}

	now := uc.clock.Now()

	if !current.CreatedAt.Add(uc.holdTTL).After(now) {
		expired, err := uc.ledger.Transition(ctx, reservationID, []domain.Status{domain.StatusHeld}, domain.StatusExpired, now)
		if err == nil {
			uc.audit.Dispatch(audit.Event{
				ProviderID: expired.ProviderID,
				Action:     audit.ActionReservationExpired,
				Entity:     audit.EntityReservation,
				EntityID:   expired.ID,
			})
		}
		return nil, ErrHoldExpired
	}

	r, err := uc.ledger.Transition(ctx, reservationID, []domain.Status{domain.StatusHeld}, domain.StatusConfirmed, now)
	if errors.Is(err, domain.ErrInvalidState) && r != nil && r.State == domain.StatusConfirmed {
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: r.ProviderID,
		Action:     audit.ActionReservationConfirmed,
		Entity:     audit.EntityReservation,
		EntityID:   r.ID,
	})

	return r, nil
}
