package booking

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type BandInput struct {
	Start string
	End   string
}

// CalendarInput replaces a provider's whole calendar. A day type missing from
// Bands is closed.
type CalendarInput struct {
	ProviderID string
	UserID     *uint

	Bands          map[string]BandInput
	ExceptionDates []string

	SlotGranularityMinutes int
	BookingHorizonDays     int
	Timezone               string

	// nil keeps the default notice; a pointer to 0 disables it.
	MinimumLeadMinutes *int
}

// ======================================================
// UPDATE CALENDAR
// ======================================================

type UpdateProviderCalendar struct {
	store           calendar.Store
	audit           *audit.Dispatcher
	defaultTimezone string
}

func NewUpdateProviderCalendar(
	store calendar.Store,
	audit *audit.Dispatcher,
) *UpdateProviderCalendar {
	return &UpdateProviderCalendar{store: store, audit: audit}
}

// WithDefaultTimezone sets the zone used when an update leaves it blank.
func (uc *UpdateProviderCalendar) WithDefaultTimezone(tz string) *UpdateProviderCalendar {
	uc.defaultTimezone = strings.TrimSpace(tz)
	return uc
}

func (uc *UpdateProviderCalendar) Execute(
	ctx context.Context,
	in CalendarInput,
) (*calendar.ProviderCalendar, error) {

	if strings.TrimSpace(in.Timezone) == "" {
		in.Timezone = uc.defaultTimezone
	}

	cal, err := buildCalendar(in)
	if err != nil {
		return nil, err
	}

	if err := uc.store.SaveCalendar(ctx, cal); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: cal.ProviderID,
		UserID:     in.UserID,
		Action:     audit.ActionCalendarUpdated,
		Entity:     audit.EntityCalendar,
		EntityID:   cal.ProviderID,
		Metadata: map[string]any{
			"bands":           len(cal.Bands),
			"exception_dates": len(cal.ExceptionDates),
			"granularity":     cal.SlotGranularityMinutes,
		},
	})

	return cal, nil
}

func buildCalendar(in CalendarInput) (*calendar.ProviderCalendar, error) {
	providerID := strings.TrimSpace(in.ProviderID)
	if providerID == "" {
		return nil, ErrInvalidCalendar
	}

	cal := calendar.NewProviderCalendar(providerID)

	if in.SlotGranularityMinutes != 0 {
		cal.SlotGranularityMinutes = in.SlotGranularityMinutes
	}
	if in.BookingHorizonDays != 0 {
		cal.BookingHorizonDays = in.BookingHorizonDays
	}
	if in.MinimumLeadMinutes != nil {
		cal.MinimumLeadMinutes = *in.MinimumLeadMinutes
	}
	if tz := strings.TrimSpace(in.Timezone); tz != "" {
		cal.Timezone = tz
	}

	for key, b := range in.Bands {
		dt, err := calendar.ParseDayType(key)
		if err != nil {
			return nil, ErrInvalidCalendar
		}
		band, err := calendar.ParseTimeBand(b.Start, b.End)
		if err != nil {
			return nil, ErrInvalidTime
		}
		cal.Bands[dt] = band
	}

	for _, s := range in.ExceptionDates {
		d, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		cal.ExceptionDates[d] = struct{}{}
	}

	if err := cal.Validate(); err != nil {
		return nil, ErrInvalidCalendar
	}
	if !timezone.IsValid(cal.Timezone) {
		return nil, ErrInvalidCalendar
	}

	return cal, nil
}

// ======================================================
// READ CALENDAR
// ======================================================

type GetProviderCalendar struct {
	directory calendar.Directory
}

func NewGetProviderCalendar(directory calendar.Directory) *GetProviderCalendar {
	return &GetProviderCalendar{directory: directory}
}

func (uc *GetProviderCalendar) Execute(
	ctx context.Context,
	providerID string,
) (*calendar.ProviderCalendar, error) {
	return uc.directory.GetCalendar(ctx, providerID)
}

// ======================================================
// HOLIDAYS
// ======================================================

type ReplaceHolidays struct {
	store calendar.Store
	audit *audit.Dispatcher
}

func NewReplaceHolidays(
	store calendar.Store,
	audit *audit.Dispatcher,
) *ReplaceHolidays {
	return &ReplaceHolidays{store: store, audit: audit}
}

func (uc *ReplaceHolidays) Execute(
	ctx context.Context,
	userID *uint,
	dates []string,
) (calendar.HolidaySet, error) {

	parsed := make([]calendar.Date, 0, len(dates))
	for _, s := range dates {
		d, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, d)
	}

	set := calendar.NewHolidaySet(parsed...)
	if err := uc.store.ReplaceHolidays(ctx, set); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   audit.ActionHolidaysReplaced,
		Entity:   audit.EntityHoliday,
		Metadata: map[string]any{"count": len(set)},
	})

	return set, nil
}

type ListHolidays struct {
	holidays calendar.HolidaySource
}

func NewListHolidays(holidays calendar.HolidaySource) *ListHolidays {
	return &ListHolidays{holidays: holidays}
}

func (uc *ListHolidays) Execute(ctx context.Context) ([]calendar.Date, error) {
	set, err := uc.holidays.Holidays(ctx)
	if err != nil {
		return nil, err
	}
	return set.Dates(), nil
}
