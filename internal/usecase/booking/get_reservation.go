package booking

import (
	"context"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

type GetReservation struct {
	ledger domain.Ledger
}

func NewGetReservation(ledger domain.Ledger) *GetReservation {
	return &GetReservation{ledger: ledger}
}

func (uc *GetReservation) Execute(
	ctx context.Context,
	reservationID string,
) (*domain.Reservation, error) {
	return uc.ledger.Get(ctx, reservationID)
}
