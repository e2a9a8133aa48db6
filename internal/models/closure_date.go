package models

import "time"

// ClosureDate closes a provider for a whole day.
type ClosureDate struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProviderID string `gorm:"size:64;not null;uniqueIndex:idx_closure_provider_date" json:"provider_id"`

	Date time.Time `gorm:"type:date;not null;uniqueIndex:idx_closure_provider_date" json:"date"`

	CreatedAt time.Time `json:"created_at"`
}
