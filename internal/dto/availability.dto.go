package dto

import "github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"

type SlotDTO struct {
	Time    string `json:"time"`
	NextDay bool   `json:"next_day"`
}

type AvailabilityDTO struct {
	ProviderID string    `json:"provider_id"`
	Date       string    `json:"date"`
	Times      []string  `json:"times"`
	Slots      []SlotDTO `json:"slots"`
}

func FromSlots(slots []slot.Slot) []SlotDTO {
	out := make([]SlotDTO, len(slots))
	for i, s := range slots {
		out[i] = SlotDTO{Time: s.Clock(), NextDay: s.NextDay()}
	}
	return out
}
