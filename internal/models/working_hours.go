package models

import "time"

// WorkingBand is one day-type row of a provider's weekly template.
type WorkingBand struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProviderID string `gorm:"size:64;not null;uniqueIndex:idx_band_provider_day" json:"provider_id"`

	DayType string `gorm:"size:16;not null;uniqueIndex:idx_band_provider_day" json:"day_type"`

	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
