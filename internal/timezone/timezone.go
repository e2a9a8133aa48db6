package timezone

import (
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "Asia/Seoul"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clock is the source of "now" for everything that compares against the current time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock frozen at one instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
