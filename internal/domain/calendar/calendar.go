package calendar

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const (
	MinutesPerDay = 24 * 60

	DefaultSlotGranularityMinutes = 30
	DefaultBookingHorizonDays     = 30
	DefaultMinimumLeadMinutes     = 30
)

// ===============================
// Time Band
// ===============================

// TimeBand is an opening window in minutes of day. End <= Start means the band
// runs past midnight into the next calendar day.
type TimeBand struct {
	Start int
	End   int
}

func ParseTimeBand(start, end string) (TimeBand, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeBand{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeBand{}, err
	}
	return TimeBand{Start: s, End: e}, nil
}

func (b TimeBand) Overnight() bool {
	return b.End <= b.Start
}

// ExtendedEnd is End on a monotonic minute scale that keeps going past 1440.
func (b TimeBand) ExtendedEnd() int {
	if b.Overnight() {
		return b.End + MinutesPerDay
	}
	return b.End
}

func (b TimeBand) Validate() error {
	if b.Start < 0 || b.Start >= MinutesPerDay || b.End < 0 || b.End >= MinutesPerDay {
		return fmt.Errorf("time band %s-%s out of range", FormatClock(b.Start), FormatClock(b.End))
	}
	return nil
}

func (b TimeBand) String() string {
	return FormatClock(b.Start) + "-" + FormatClock(b.End)
}

// ParseClock parses a 24h "HH:MM" wall-clock value into minutes of day.
func ParseClock(hm string) (int, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil || len(hm) != 5 {
		return 0, fmt.Errorf("invalid clock value %q", hm)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes as "HH:MM", wrapping values past midnight.
func FormatClock(minute int) string {
	m := ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ===============================
// Provider Calendar
// ===============================

type ProviderCalendar struct {
	ProviderID string

	// A day type without an entry is closed.
	Bands map[DayType]TimeBand

	// Whole-day closures regardless of day type.
	ExceptionDates map[Date]struct{}

	SlotGranularityMinutes int
	BookingHorizonDays     int
	MinimumLeadMinutes     int

	Timezone string
}

func NewProviderCalendar(providerID string) *ProviderCalendar {
	return &ProviderCalendar{
		ProviderID:             providerID,
		Bands:                  make(map[DayType]TimeBand),
		ExceptionDates:         make(map[Date]struct{}),
		SlotGranularityMinutes: DefaultSlotGranularityMinutes,
		BookingHorizonDays:     DefaultBookingHorizonDays,
		MinimumLeadMinutes:     DefaultMinimumLeadMinutes,
		Timezone:               timezone.DefaultTimezone,
	}
}

func (c *ProviderCalendar) Granularity() int {
	if c.SlotGranularityMinutes <= 0 {
		return DefaultSlotGranularityMinutes
	}
	return c.SlotGranularityMinutes
}

func (c *ProviderCalendar) Horizon() int {
	if c.BookingHorizonDays <= 0 {
		return DefaultBookingHorizonDays
	}
	return c.BookingHorizonDays
}

// Lead is the minimum notice in minutes. Zero is allowed and means "not yet started".
func (c *ProviderCalendar) Lead() int {
	if c.MinimumLeadMinutes < 0 {
		return DefaultMinimumLeadMinutes
	}
	return c.MinimumLeadMinutes
}

func (c *ProviderCalendar) Location() *time.Location {
	return timezone.Location(c.Timezone)
}

func (c *ProviderCalendar) IsException(d Date) bool {
	_, ok := c.ExceptionDates[d]
	return ok
}

func (c *ProviderCalendar) BandFor(d Date, holidays HolidaySet) (TimeBand, bool) {
	band, ok := c.Bands[Classify(d, holidays)]
	return band, ok
}

// IsOpen reports whether d can be offered at all, judged against now in the
// provider's timezone.
func (c *ProviderCalendar) IsOpen(d Date, holidays HolidaySet, now time.Time) bool {
	if c.IsException(d) {
		return false
	}
	if _, ok := c.BandFor(d, holidays); !ok {
		return false
	}

	today := DateOf(now.In(c.Location()))
	if d.Before(today) {
		return false
	}
	if d.After(today.AddDays(c.Horizon())) {
		return false
	}
	return true
}

func (c *ProviderCalendar) Validate() error {
	if c.ProviderID == "" {
		return fmt.Errorf("provider id is required")
	}
	for dt, band := range c.Bands {
		if err := band.Validate(); err != nil {
			return fmt.Errorf("%s: %w", dt, err)
		}
	}
	if c.SlotGranularityMinutes < 0 || c.SlotGranularityMinutes > MinutesPerDay {
		return fmt.Errorf("slot granularity %d out of range", c.SlotGranularityMinutes)
	}
	if c.BookingHorizonDays < 0 {
		return fmt.Errorf("booking horizon %d must not be negative", c.BookingHorizonDays)
	}
	if c.MinimumLeadMinutes < 0 {
		return fmt.Errorf("minimum lead %d must not be negative", c.MinimumLeadMinutes)
	}
	if !timezone.IsValid(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}
