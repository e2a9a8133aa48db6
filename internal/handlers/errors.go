package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
)

type errorMapping struct {
	status  int
	message string
}

var businessErrors = map[string]errorMapping{
	calendar.CodeProviderNotFound:       {http.StatusNotFound, "Provider not found."},
	reservation.CodeReservationNotFound: {http.StatusNotFound, "Reservation not found."},

	reservation.CodeSlotConflict:     {http.StatusConflict, "Slot was just taken. Pick another time."},
	reservation.CodeSlotNotOffered:   {http.StatusConflict, "Slot is no longer offered. Refresh availability."},
	reservation.CodeSlotNotAvailable: {http.StatusConflict, "Slot is not available."},
	reservation.CodeInvalidState:     {http.StatusConflict, "Reservation cannot change to that state."},
	booking.CodeHoldExpired:          {http.StatusConflict, "Hold expired before confirmation."},

	booking.CodeInvalidDate:         {http.StatusBadRequest, "Date must be YYYY-MM-DD."},
	booking.CodeInvalidTime:         {http.StatusBadRequest, "Time must be HH:MM (24h)."},
	booking.CodeGranularityMismatch: {http.StatusBadRequest, "Time is not on the provider's slot grid."},
	booking.CodeInvalidCalendar:     {http.StatusBadRequest, "Calendar is invalid."},
	reservation.CodeInvalidPatient:  {http.StatusBadRequest, "Patient id is required."},
}

// writeError maps a use case error onto the HTTP error body. Anything that is not
// a business error is a 500 and is attached to the gin context for the request logger.
func writeError(c *gin.Context, err error) {
	if code, ok := httperr.BusinessCode(err); ok {
		if m, ok := businessErrors[code]; ok {
			httperr.Write(c, m.status, code, m.message)
			return
		}
		httperr.BadRequest(c, code, code)
		return
	}

	_ = c.Error(err)
	if httperr.IsInternal(err) {
		httperr.Internal(c, "engine_failure", "Storage is unavailable. Try again.")
		return
	}
	httperr.Internal(c, "internal_error", "Unexpected error.")
}
