// Package errors defines the error taxonomy shared across the trial
// license system. Every failure mode callers can act on is a sentinel
// checked with errors.Is; nothing here wraps transport or I/O detail.
package errors

import "errors"

// Trial lifecycle errors. These mirror the terminal trial states: a
// trial that reaches one of these never returns to active.
var (
	ErrTrialNotActivated     = errors.New("trial not activated")
	ErrTrialAlreadyActivated = errors.New("trial already activated on this machine")
	ErrTrialExpired          = errors.New("trial expired")
	ErrTrialTampered         = errors.New("trial data has been tampered with")
	ErrClockTampered         = errors.New("system clock has been tampered with")
	ErrMachineMismatch       = errors.New("trial is locked to a different machine")
)
