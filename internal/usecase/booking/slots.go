package booking

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// slotSource composes calendar, holidays and generator for one provider-day.
// It is shared by the read path and the booking path so both see the same
// candidates.
type slotSource struct {
	directory calendar.Directory
	holidays  calendar.HolidaySource
	ledger    reservation.Ledger
	clock     timezone.Clock
}

func parseDate(s string) (calendar.Date, error) {
	d, err := calendar.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return calendar.Date{}, ErrInvalidDate
	}
	return d, nil
}

// candidates returns the calendar and the generator's slots for the date,
// before claimed keys are removed. A closed date yields an empty slice.
func (s *slotSource) candidates(
	ctx context.Context,
	providerID string,
	date calendar.Date,
) (*calendar.ProviderCalendar, calendar.TimeBand, []slot.Slot, error) {

	cal, err := s.directory.GetCalendar(ctx, providerID)
	if err != nil {
		return nil, calendar.TimeBand{}, nil, err
	}

	holidays, err := s.holidays.Holidays(ctx)
	if err != nil {
		return nil, calendar.TimeBand{}, nil, err
	}

	now := s.clock.Now()
	if !cal.IsOpen(date, holidays, now) {
		return cal, calendar.TimeBand{}, []slot.Slot{}, nil
	}

	band, ok := cal.BandFor(date, holidays)
	slots := slot.Generate(slot.Input{
		Band:        band,
		HasBand:     ok,
		Granularity: cal.Granularity(),
		Date:        date,
		Location:    cal.Location(),
		Now:         now,
		LeadMinutes: cal.Lead(),
	})

	return cal, band, slots, nil
}

// available is candidates minus the ledger's claimed keys.
func (s *slotSource) available(
	ctx context.Context,
	providerID string,
	date calendar.Date,
	candidates []slot.Slot,
) ([]slot.Slot, error) {

	if len(candidates) == 0 {
		return candidates, nil
	}

	claimed, err := s.ledger.ListClaimed(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	return slot.Without(candidates, claimed), nil
}

func newSlotSource(
	directory calendar.Directory,
	holidays calendar.HolidaySource,
	ledger reservation.Ledger,
	clock timezone.Clock,
) slotSource {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return slotSource{directory: directory, holidays: holidays, ledger: ledger, clock: clock}
}
