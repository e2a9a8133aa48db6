package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type ReservationHandler struct {
	get     *booking.GetReservation
	confirm *booking.ConfirmReservation
	cancel  *booking.CancelReservation
	history *booking.ListPatientReservations
}

func NewReservationHandler(
	get *booking.GetReservation,
	confirm *booking.ConfirmReservation,
	cancel *booking.CancelReservation,
	history *booking.ListPatientReservations,
) *ReservationHandler {
	return &ReservationHandler{
		get:     get,
		confirm: confirm,
		cancel:  cancel,
		history: history,
	}
}

func reservationID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !validators.IsUUID(id) {
		httperr.NotFound(c, "reservation_not_found", "Reservation not found.")
		return "", false
	}
	return id, true
}

// ======================================================
// GET
// ======================================================

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	r, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, dto.FromReservation(r))
}

// ======================================================
// CONFIRM
// ======================================================

func (h *ReservationHandler) Confirm(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	r, err := h.confirm.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, dto.FromReservation(r))
}

// ======================================================
// CANCEL
// ======================================================

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	r, err := h.cancel.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, dto.FromReservation(r))
}

// ======================================================
// PATIENT HISTORY
// ======================================================

func (h *ReservationHandler) PatientHistory(c *gin.Context) {
	patientID := c.Param("patientID")
	if !validators.IsIdentifier(patientID) {
		httperr.BadRequest(c, "invalid_patient", "Patient id is invalid.")
		return
	}

	rs, err := h.history.Execute(c.Request.Context(), patientID)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, dto.FromReservations(rs))
}
