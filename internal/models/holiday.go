package models

import "time"

// Holiday is shared by every provider.
type Holiday struct {
	Date time.Time `gorm:"primaryKey;type:date" json:"date"`
	Name string    `gorm:"size:100" json:"name"`

	CreatedAt time.Time `json:"created_at"`
}
