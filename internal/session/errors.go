package session

import (
	"errors"
	"fmt"
)

// Operation errors are returned as values to the caller and are always safe
// to retry; nothing past the session boundary panics.
var (
	ErrStudentNotFound  = errors.New("student id not found")
	ErrProctorNotFound  = errors.New("proctor id not found")
	ErrAlreadyCheckedIn = errors.New("student already checked in")
	ErrNoSeatAvailable  = errors.New("no available seat for student")

	ErrBreakTooEarly   = errors.New("washroom break not allowed: exam started less than 30 minutes ago")
	ErrBreakTooLate    = errors.New("washroom break not allowed: within the last 15 minutes of the exam")
	ErrBreakIneligible = errors.New("invalid student number or student is ineligible for a break")

	ErrNotLoaded = errors.New("exam session not loaded")
)

// tooEarlyError carries the remaining wait until the break window opens so
// callers can surface the countdown. errors.Is matches ErrBreakTooEarly.
func tooEarlyError(waitSecs int) error {
	return fmt.Errorf("%w, please wait %02d:%02d (MM:SS)", ErrBreakTooEarly, waitSecs/60, waitSecs%60)
}
