package booking

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// AvailabilityResult lists the free start times of one provider-day in
// ascending order. A closed day has no slots.
type AvailabilityResult struct {
	ProviderID string
	Date       calendar.Date
	Slots      []slot.Slot
}

func (r *AvailabilityResult) Times() []string {
	return slot.Clocks(r.Slots)
}

type GetAvailableSlots struct {
	source slotSource
}

func NewGetAvailableSlots(
	directory calendar.Directory,
	holidays calendar.HolidaySource,
	ledger reservation.Ledger,
	clock timezone.Clock,
) *GetAvailableSlots {
	return &GetAvailableSlots{
		source: newSlotSource(directory, holidays, ledger, clock),
	}
}

func (uc *GetAvailableSlots) Execute(
	ctx context.Context,
	providerID string,
	dateStr string,
) (*AvailabilityResult, error) {

	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	_, _, candidates, err := uc.source.candidates(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	free, err := uc.source.available(ctx, providerID, date, candidates)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResult{
		ProviderID: providerID,
		Date:       date,
		Slots:      free,
	}, nil
}
