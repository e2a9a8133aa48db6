package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type AvailabilityHandler struct {
	available *booking.GetAvailableSlots
	book      *booking.BookSlot
}

func NewAvailabilityHandler(
	available *booking.GetAvailableSlots,
	book *booking.BookSlot,
) *AvailabilityHandler {
	return &AvailabilityHandler{available: available, book: book}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type CreateReservationRequest struct {
	Date      string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime string `json:"start_time" binding:"required"` // HH:MM
	PatientID string `json:"patient_id" binding:"required"`
	Notes     string `json:"notes" binding:"max=255"`
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *AvailabilityHandler) Availability(c *gin.Context) {
	providerID := c.Param("providerID")
	dateStr := strings.TrimSpace(c.Query("date"))

	if dateStr == "" {
		httperr.BadRequest(c, "missing_params", "Query parameter date is required.")
		return
	}
	if !validators.IsIdentifier(providerID) {
		httperr.BadRequest(c, "invalid_provider_id", "Provider id is invalid.")
		return
	}

	res, err := h.available.Execute(c.Request.Context(), providerID, dateStr)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, dto.AvailabilityDTO{
		ProviderID: res.ProviderID,
		Date:       res.Date.String(),
		Times:      res.Times(),
		Slots:      dto.FromSlots(res.Slots),
	})
}

////////////////////////////////////////////////////////
// BOOK
////////////////////////////////////////////////////////

func (h *AvailabilityHandler) CreateReservation(c *gin.Context) {
	providerID := c.Param("providerID")
	if !validators.IsIdentifier(providerID) {
		httperr.BadRequest(c, "invalid_provider_id", "Provider id is invalid.")
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if !validators.IsIdentifier(strings.TrimSpace(req.PatientID)) {
		httperr.BadRequest(c, "invalid_patient", "Patient id is invalid.")
		return
	}

	r, err := h.book.Execute(c.Request.Context(), booking.BookSlotInput{
		ProviderID: providerID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		PatientID:  req.PatientID,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, dto.FromReservation(r))
}
