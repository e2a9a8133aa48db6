package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// ExpireStaleHolds returns unconfirmed holds older than the hold window to the
// pool. Running it twice, or alongside bookings, is safe.
type ExpireStaleHolds struct {
	ledger  domain.Ledger
	clock   timezone.Clock
	holdTTL time.Duration
	audit   *audit.Dispatcher
}

func NewExpireStaleHolds(
	ledger domain.Ledger,
	clock timezone.Clock,
	holdTTL time.Duration,
	audit *audit.Dispatcher,
) *ExpireStaleHolds {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	return &ExpireStaleHolds{
		ledger:  ledger,
		clock:   clock,
		holdTTL: holdTTL,
		audit:   audit,
	}
}

func (uc *ExpireStaleHolds) Execute(ctx context.Context) ([]domain.Reservation, error) {
	now := uc.clock.Now()

	expired, err := uc.ledger.ExpireHeld(ctx, now.Add(-uc.holdTTL), now)
	if err != nil {
		return nil, err
	}

	for _, r := range expired {
		uc.audit.Dispatch(audit.Event{
			ProviderID: r.ProviderID,
			Action:     audit.ActionReservationExpired,
			Entity:     audit.EntityReservation,
			EntityID:   r.ID,
		})
	}

	return expired, nil
}
