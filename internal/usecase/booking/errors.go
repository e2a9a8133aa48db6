package booking

import "github.com/BruksfildServices01/clinic-scheduler/internal/httperr"

const (
	CodeInvalidDate         = "invalid_date"
	CodeInvalidTime         = "invalid_time"
	CodeGranularityMismatch = "granularity_mismatch"
	CodeHoldExpired         = "hold_expired"
	CodeInvalidCalendar     = "invalid_calendar"
)

var (
	ErrInvalidDate         = httperr.ErrBusiness(CodeInvalidDate)
	ErrInvalidTime         = httperr.ErrBusiness(CodeInvalidTime)
	ErrGranularityMismatch = httperr.ErrBusiness(CodeGranularityMismatch)
	ErrHoldExpired         = httperr.ErrBusiness(CodeHoldExpired)
	ErrInvalidCalendar     = httperr.ErrBusiness(CodeInvalidCalendar)
)
