package booking

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

// ListProviderDay is the provider's day sheet: every reservation for the date
// in any state, in slot order.
type ListProviderDay struct {
	directory calendar.Directory
	ledger    domain.Ledger
}

func NewListProviderDay(
	directory calendar.Directory,
	ledger domain.Ledger,
) *ListProviderDay {
	return &ListProviderDay{directory: directory, ledger: ledger}
}

func (uc *ListProviderDay) Execute(
	ctx context.Context,
	providerID string,
	dateStr string,
) ([]domain.Reservation, error) {

	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	if _, err := uc.directory.GetCalendar(ctx, providerID); err != nil {
		return nil, err
	}

	return uc.ledger.ListByProviderDate(ctx, providerID, date)
}
