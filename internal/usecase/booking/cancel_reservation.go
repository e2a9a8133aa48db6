package booking

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

type CancelReservation struct {
	ledger domain.Ledger
	clock  timezone.Clock
	audit  *audit.Dispatcher
}

func NewCancelReservation(
	ledger domain.Ledger,
	clock timezone.Clock,
	audit *audit.Dispatcher,
) *CancelReservation {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return &CancelReservation{
		ledger: ledger,
		clock:  clock,
		audit:  audit,
	}
}

// Execute cancels a held or confirmed reservation and frees its slot at once.
// Cancelling a reservation that already ended returns it unchanged.
func (uc *CancelReservation) Execute(
	ctx context.Context,
	reservationID string,
) (*domain.Reservation, error) {

	r, err := uc.ledger.Transition(
		ctx,
		reservationID,
		domain.ActiveStatuses,
		domain.StatusCancelled,
		uc.clock.Now(),
	)
	if errors.Is(err, domain.ErrInvalidState) && r != nil && r.State.Terminal() {
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: r.ProviderID,
		Action:     audit.ActionReservationCancelled,
		Entity:     audit.EntityReservation,
		EntityID:   r.ID,
	})

	return r, nil
}
