package calendar

import (
	"fmt"
	"sort"
	"time"
)

// ===============================
// Day Type
// ===============================

type DayType string

const (
	DayWeekday  DayType = "weekday"
	DaySaturday DayType = "saturday"
	DaySunday   DayType = "sunday"
	DayHoliday  DayType = "holiday"
)

var DayTypes = []DayType{DayWeekday, DaySaturday, DaySunday, DayHoliday}

func ParseDayType(s string) (DayType, error) {
	for _, dt := range DayTypes {
		if string(dt) == s {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown day type %q", s)
}

// ===============================
// Holidays
// ===============================

// HolidaySet is the set of public holidays supplied by the holiday source.
type HolidaySet map[Date]struct{}

func NewHolidaySet(dates ...Date) HolidaySet {
	hs := make(HolidaySet, len(dates))
	for _, d := range dates {
		hs[d] = struct{}{}
	}
	return hs
}

func (hs HolidaySet) Contains(d Date) bool {
	_, ok := hs[d]
	return ok
}

// Dates returns the holidays in ascending order.
func (hs HolidaySet) Dates() []Date {
	out := make([]Date, 0, len(hs))
	for d := range hs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Classify maps a date to its day type. Holiday wins over Sunday, Sunday over Saturday.
// A nil set classifies by weekday only.
func Classify(d Date, holidays HolidaySet) DayType {
	if holidays.Contains(d) {
		return DayHoliday
	}

	switch d.Weekday() {
	case time.Sunday:
		return DaySunday
	case time.Saturday:
		return DaySaturday
	default:
		return DayWeekday
	}
}
