package dto

import (
	"sort"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
)

type BandDTO struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Overnight bool   `json:"overnight"`
}

type CalendarDTO struct {
	ProviderID             string             `json:"provider_id"`
	Bands                  map[string]BandDTO `json:"bands"`
	ExceptionDates         []string           `json:"exception_dates"`
	SlotGranularityMinutes int                `json:"slot_granularity_minutes"`
	BookingHorizonDays     int                `json:"booking_horizon_days"`
	MinimumLeadMinutes     int                `json:"minimum_lead_minutes"`
	Timezone               string             `json:"timezone"`
}

func FromCalendar(c *calendar.ProviderCalendar) CalendarDTO {
	out := CalendarDTO{
		ProviderID:             c.ProviderID,
		Bands:                  make(map[string]BandDTO, len(c.Bands)),
		ExceptionDates:         make([]string, 0, len(c.ExceptionDates)),
		SlotGranularityMinutes: c.Granularity(),
		BookingHorizonDays:     c.Horizon(),
		MinimumLeadMinutes:     c.Lead(),
		Timezone:               c.Timezone,
	}

	for dt, b := range c.Bands {
		out.Bands[string(dt)] = BandDTO{
			Start:     calendar.FormatClock(b.Start),
			End:       calendar.FormatClock(b.End),
			Overnight: b.Overnight(),
		}
	}

	for d := range c.ExceptionDates {
		out.ExceptionDates = append(out.ExceptionDates, d.String())
	}
	sort.Strings(out.ExceptionDates)

	return out
}
