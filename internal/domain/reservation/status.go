package reservation

import "github.com/BruksfildServices01/clinic-scheduler/internal/httperr"

// ===============================
// Reservation Status
// ===============================

type Status string

const (
	StatusHeld      Status = "held"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the states that occupy a slot.
var ActiveStatuses = []Status{StatusHeld, StatusConfirmed}

func (s Status) Active() bool {
	return s == StatusHeld || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusHeld, StatusConfirmed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// ===============================
// Validations
// ===============================

// CanConfirm: only a hold can be confirmed.
func CanConfirm(current Status) error {
	if current != StatusHeld {
		return httperr.ErrBusiness(CodeInvalidState)
	}
	return nil
}

// CanCancel: holds and confirmed reservations can be cancelled.
func CanCancel(current Status) error {
	if !current.Active() {
		return httperr.ErrBusiness(CodeInvalidState)
	}
	return nil
}

// CanExpire: only unconfirmed holds time out.
func CanExpire(current Status) error {
	if current != StatusHeld {
		return httperr.ErrBusiness(CodeInvalidState)
	}
	return nil
}

func InitialStatus() Status {
	return StatusHeld
}

// Sources lists the states from which to is reachable.
func Sources(to Status) []Status {
	switch to {
	case StatusConfirmed, StatusExpired:
		return []Status{StatusHeld}
	case StatusCancelled:
		return []Status{StatusHeld, StatusConfirmed}
	}
	return nil
}
