package trial

import (
	trialerrors "ticketzero/internal/errors"
)

// State is a terminal trial state. The lifecycle is
// not_activated → active → {expired | tampered | clock_tampered |
// invalid}; there is no path back to active.
type State string

const (
	StateNotActivated  State = "not_activated"
	StateActive        State = "active"
	StateExpired       State = "expired"
	StateInvalid       State = "invalid"
	StateTampered      State = "tampered"
	StateClockTampered State = "clock_tampered"
)

// Err maps a non-active state to its sentinel error, nil for active.
func (s State) Err() error {
	switch s {
	case StateNotActivated:
		return trialerrors.ErrTrialNotActivated
	case StateExpired:
		return trialerrors.ErrTrialExpired
	case StateInvalid:
		return trialerrors.ErrMachineMismatch
	case StateTampered:
		return trialerrors.ErrTrialTampered
	case StateClockTampered:
		return trialerrors.ErrClockTampered
	default:
		return nil
	}
}

// Status is the full result of a trial status check. It is always
// well-formed; status checks never fail with an error.
type Status struct {
	Active         bool    `json:"active"`
	State          State   `json:"status"`
	Message        string  `json:"message"`
	CanActivate    bool    `json:"can_activate"`
	DaysRemaining  float64 `json:"days_remaining,omitempty"`
	HoursRemaining float64 `json:"hours_remaining,omitempty"`
	DaysExpired    int     `json:"days_expired,omitempty"`
	StartDate      string  `json:"start_date,omitempty"`
	ExpiryDate     string  `json:"expiry_date,omitempty"`
	ExpiredDate    string  `json:"expired_date,omitempty"`
}
