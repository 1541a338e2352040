package session

import "fmt"

// State is a session's position in its lifecycle.
type State string

const (
	StateCreated   State = "created"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further mutation is permitted from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Event is a state-machine trigger applied to a session.
type Event string

const (
	EventStart    Event = "start"
	EventPause    Event = "pause"
	EventResume   Event = "resume"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// ParseEvent converts a string into a known Event.
func ParseEvent(s string) (Event, error) {
	switch e := Event(s); e {
	case EventStart, EventPause, EventResume, EventComplete, EventCancel:
		return e, nil
	}
	return "", fmt.Errorf("%w: unknown event %q", ErrValidation, s)
}

// transitions is the full lifecycle table. Absence of a (state, event) pair
// means the event is rejected from that state.
var transitions = map[State]map[Event]State{
	StateCreated: {
		EventStart:  StateActive,
		EventCancel: StateCancelled,
	},
	StateActive: {
		EventPause:    StatePaused,
		EventComplete: StateCompleted,
		EventCancel:   StateCancelled,
	},
	StatePaused: {
		EventResume:   StateActive,
		EventComplete: StateCompleted,
		EventCancel:   StateCancelled,
	},
}

// nextState resolves the transition table for a (state, event) pair.
func nextState(from State, event Event) (State, error) {
	to, ok := transitions[from][event]
	if !ok {
		return "", fmt.Errorf("%w: %s from state %s", ErrInvalidTransition, event, from)
	}
	return to, nil
}
