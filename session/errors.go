package session

import "errors"

// Sentinel errors for session mutations. Callers branch with errors.Is; the
// wrapped message carries the offending state, event, or field.
var (
	// ErrInvalidTransition is returned when a state-machine event is not
	// legal from the session's current state, including any attempt to
	// mutate a COMPLETED or CANCELLED session.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrValidation is returned for malformed input: empty message content,
	// an unknown role, or an unknown session type.
	ErrValidation = errors.New("validation failed")
)
