package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
)

type HolidaysHandler struct {
	list    *booking.ListHolidays
	replace *booking.ReplaceHolidays
}

func NewHolidaysHandler(
	list *booking.ListHolidays,
	replace *booking.ReplaceHolidays,
) *HolidaysHandler {
	return &HolidaysHandler{list: list, replace: replace}
}

type ReplaceHolidaysRequest struct {
	Dates []string `json:"dates"`
}

func dateStrings(dates []calendar.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

func (h *HolidaysHandler) List(c *gin.Context) {
	dates, err := h.list.Execute(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, dateStrings(dates))
}

// Replace swaps the whole holiday set.
func (h *HolidaysHandler) Replace(c *gin.Context) {
	var req ReplaceHolidaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	set, err := h.replace.Execute(c.Request.Context(), actorID(c), req.Dates)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, dateStrings(set.Dates()))
}
