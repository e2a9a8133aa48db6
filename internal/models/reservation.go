package models

import "time"

type Reservation struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	ProviderID string `gorm:"size:64;not null" json:"provider_id"`

	SlotDate    time.Time `gorm:"type:date;not null" json:"slot_date"`
	StartMinute int       `gorm:"not null" json:"start_minute"`

	PatientID string `gorm:"size:64;not null;index" json:"patient_id"`

	State string `gorm:"size:20;default:'held'" json:"state"`

	Notes       string     `gorm:"size:255" json:"notes"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	ExpiredAt   *time.Time `json:"expired_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
