package booking

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

// ListPatientReservations is the patient's booking history, newest first.
type ListPatientReservations struct {
	ledger domain.Ledger
}

func NewListPatientReservations(ledger domain.Ledger) *ListPatientReservations {
	return &ListPatientReservations{ledger: ledger}
}

func (uc *ListPatientReservations) Execute(
	ctx context.Context,
	patientID string,
) ([]domain.Reservation, error) {

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, domain.ErrInvalidPatient
	}

	return uc.ledger.ListByPatient(ctx, patientID)
}
