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

// CalendarHandler is the admin side of a provider: its calendar and its day sheet.
type CalendarHandler struct {
	get    *booking.GetProviderCalendar
	update *booking.UpdateProviderCalendar
	day    *booking.ListProviderDay
}

func NewCalendarHandler(
	get *booking.GetProviderCalendar,
	update *booking.UpdateProviderCalendar,
	day *booking.ListProviderDay,
) *CalendarHandler {
	return &CalendarHandler{get: get, update: update, day: day}
}

type BandConfig struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type CalendarUpdateRequest struct {
	// Keys: weekday, saturday, sunday, holiday. A missing key closes that day type.
	Bands                  map[string]BandConfig `json:"bands"`
	ExceptionDates         []string              `json:"exception_dates"`
	SlotGranularityMinutes int                   `json:"slot_granularity_minutes" binding:"min=0,max=1440"`
	BookingHorizonDays     int                   `json:"booking_horizon_days" binding:"min=0"`
	MinimumLeadMinutes     *int                  `json:"minimum_lead_minutes" binding:"omitempty,min=0"`
	Timezone               string                `json:"timezone"`
}

func providerID(c *gin.Context) (string, bool) {
	id := c.Param("providerID")
	if !validators.IsIdentifier(id) {
		httperr.BadRequest(c, "invalid_provider_id", "Provider id is invalid.")
		return "", false
	}
	return id, true
}

func (h *CalendarHandler) Get(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}

	cal, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, dto.FromCalendar(cal))
}

func (h *CalendarHandler) Update(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}

	var req CalendarUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	bands := make(map[string]booking.BandInput, len(req.Bands))
	for k, b := range req.Bands {
		bands[strings.ToLower(strings.TrimSpace(k))] = booking.BandInput{Start: b.Start, End: b.End}
	}

	cal, err := h.update.Execute(c.Request.Context(), booking.CalendarInput{
		ProviderID:             id,
		UserID:                 actorID(c),
		Bands:                  bands,
		ExceptionDates:         req.ExceptionDates,
		SlotGranularityMinutes: req.SlotGranularityMinutes,
		BookingHorizonDays:     req.BookingHorizonDays,
		MinimumLeadMinutes:     req.MinimumLeadMinutes,
		Timezone:               req.Timezone,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, dto.FromCalendar(cal))
}

// DaySheet lists every reservation of the provider on ?date=, in any state.
func (h *CalendarHandler) DaySheet(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}

	dateStr := strings.TrimSpace(c.Query("date"))
	if dateStr == "" {
		httperr.BadRequest(c, "missing_params", "Query parameter date is required.")
		return
	}

	rs, err := h.day.Execute(c.Request.Context(), id, dateStr)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, dto.FromReservations(rs))
}
