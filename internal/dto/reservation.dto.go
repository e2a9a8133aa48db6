package dto

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

type ReservationDTO struct {
	ID          string     `json:"id"`
	ProviderID  string     `json:"provider_id"`
	Date        string     `json:"date"`
	StartTime   string     `json:"start_time"`
	NextDay     bool       `json:"next_day"`
	PatientID   string     `json:"patient_id"`
	State       string     `json:"state"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
}

func FromReservation(r *reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:          r.ID,
		ProviderID:  r.ProviderID,
		Date:        r.Date.String(),
		StartTime:   r.StartTime(),
		NextDay:     r.NextDay(),
		PatientID:   r.PatientID,
		State:       string(r.State),
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
		ConfirmedAt: r.ConfirmedAt,
		CancelledAt: r.CancelledAt,
		ExpiredAt:   r.ExpiredAt,
	}
}

func FromReservations(rs []reservation.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, len(rs))
	for i := range rs {
		out[i] = FromReservation(&rs[i])
	}
	return out
}
