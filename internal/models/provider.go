package models

import "time"

type Provider struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`

	SlotGranularityMinutes int    `gorm:"default:30" json:"slot_granularity_minutes"`
	BookingHorizonDays     int    `gorm:"default:30" json:"booking_horizon_days"`
	MinimumLeadMinutes     int    `gorm:"not null" json:"minimum_lead_minutes"`
	Timezone               string `gorm:"size:64;default:'Asia/Seoul'" json:"timezone"`

	Bands    []WorkingBand `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"bands"`
	Closures []ClosureDate `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"closures"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
