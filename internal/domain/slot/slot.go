package slot

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
)

// Slot is one candidate start time. Minute counts from midnight of the booking
// date and keeps counting past 1440 for overnight bands, so a 01:00 slot of a
// Monday 18:00-02:00 band has Minute 1500 and still belongs to Monday.
type Slot struct {
	Minute int
}

func (s Slot) NextDay() bool {
	return s.Minute >= calendar.MinutesPerDay
}

// Clock is the wall-clock start, "HH:MM".
func (s Slot) Clock() string {
	return calendar.FormatClock(s.Minute)
}

func (s Slot) StartsAt(d calendar.Date, loc *time.Location) time.Time {
	return d.At(s.Minute, loc)
}

// Input is everything Generate needs for one provider-day.
type Input struct {
	Band        calendar.TimeBand
	HasBand     bool
	Granularity int
	Date        calendar.Date
	Location    *time.Location
	Now         time.Time
	LeadMinutes int
}

// Generate expands a band into ascending candidate slots. Partial trailing
// intervals are dropped. Minimum notice is counted from the start of the slot
// interval in progress, and a slot that has already begun is never offered.
// The effective notice therefore ranges from lead-granularity+1 to lead
// minutes: at 14:59 with a 30 minute lead and 30 minute grid, 15:00 is offered.
func Generate(in Input) []Slot {
	if !in.HasBand || in.Granularity <= 0 {
		return []Slot{}
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	now := minutesSince(in.Date, in.Now.In(loc))
	notBefore := now
	if now > in.Band.Start {
		notBefore = in.Band.Start + ((now-in.Band.Start)/in.Granularity)*in.Granularity
	}
	notBefore += in.LeadMinutes
	if notBefore < now {
		notBefore = now
	}

	end := in.Band.ExtendedEnd()
	slots := make([]Slot, 0, (end-in.Band.Start)/in.Granularity)

	for t := in.Band.Start; t+in.Granularity <= end; t += in.Granularity {
		if t < notBefore {
			continue
		}
		slots = append(slots, Slot{Minute: t})
	}

	return slots
}

// minutesSince is the wall-clock distance from midnight of d to now, rounded up
// to the next whole minute. It is negative when now is before d.
func minutesSince(d calendar.Date, now time.Time) int {
	days := int(calendar.DateOf(now).Midnight(time.UTC).Sub(d.Midnight(time.UTC)) / (24 * time.Hour))
	m := days*calendar.MinutesPerDay + now.Hour()*60 + now.Minute()
	if now.Second() > 0 || now.Nanosecond() > 0 {
		m++
	}
	return m
}

// Find resolves a requested "HH:MM" against candidates. Labels are unique within
// one band because a band never spans more than 24 hours.
func Find(candidates []Slot, clock string) (Slot, bool) {
	for _, s := range candidates {
		if s.Clock() == clock {
			return s, true
		}
	}
	return Slot{}, false
}

// Aligned reports whether minute sits on the granularity grid anchored at the band start.
func Aligned(band calendar.TimeBand, granularity, minute int) bool {
	if granularity <= 0 {
		return false
	}
	offset := minute - band.Start
	if offset < 0 {
		offset += calendar.MinutesPerDay
	}
	return offset%granularity == 0
}

// Without removes claimed minutes, preserving order.
func Without(candidates []Slot, claimed []int) []Slot {
	if len(claimed) == 0 {
		return candidates
	}

	taken := make(map[int]struct{}, len(claimed))
	for _, m := range claimed {
		taken[m] = struct{}{}
	}

	out := make([]Slot, 0, len(candidates))
	for _, s := range candidates {
		if _, ok := taken[s.Minute]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

func Clocks(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Clock()
	}
	return out
}
