// Package session defines the conversation session aggregate: an append-only
// message history plus lifecycle state, configuration, tags, and custom
// fields. A Session value is not safe for concurrent mutation; the manager
// package serializes access per session id.
package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/parley-labs/parley/persona"
)

// PersonaRef names the persona driving the assistant side of a session and
// carries a snapshot of its descriptor taken at creation or switch time.
type PersonaRef struct {
	Name       string             `json:"name"`
	Descriptor persona.Descriptor `json:"descriptor"`
}

// Session is the stateful record of one client-persona conversation.
type Session struct {
	ID           string            `json:"id"`
	ClientID     string            `json:"client_id"`
	Type         Type              `json:"type"`
	Persona      PersonaRef        `json:"persona"`
	State        State             `json:"state"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	StartTime    time.Time         `json:"start_time,omitzero"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	Messages     []Message         `json:"messages"`
	Config       Config            `json:"config"`
	Tags         []string          `json:"tags,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// New creates a Session in the CREATED state with a fresh UUIDv7 id.
func New(clientID string, ref PersonaRef, typ Type, cfg Config) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ClientID:  clientID,
		Type:      typ,
		Persona:   ref,
		State:     StateCreated,
		CreatedAt: now,
		UpdatedAt: now,
		Config:    cfg,
	}
}

// Append validates and appends a message, auto-firing the CREATED→ACTIVE or
// PAUSED→ACTIVE transition when needed. Appending to a terminal session is
// rejected with ErrInvalidTransition and the message is not recorded.
func (s *Session) Append(role Role, content string, metadata map[string]string) (Message, error) {
	if s.State.Terminal() {
		return Message{}, fmt.Errorf("%w: append to %s session", ErrInvalidTransition, s.State)
	}

	msg, err := newMessage(role, content, metadata)
	if err != nil {
		return Message{}, err
	}

	switch s.State {
	case StateCreated:
		if err := s.Apply(EventStart); err != nil {
			return Message{}, err
		}
	case StatePaused:
		if err := s.Apply(EventResume); err != nil {
			return Message{}, err
		}
	}

	s.Messages = append(s.Messages, msg)
	s.touch()
	return msg, nil
}

// Apply runs a lifecycle event through the transition table, recording
// start and end times as side effects.
func (s *Session) Apply(event Event) error {
	next, err := nextState(s.State, event)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	switch {
	case s.State == StateCreated && next == StateActive:
		// start_time is set exactly once and never cleared.
		if s.StartTime.IsZero() {
			s.StartTime = now
		}
	case next.Terminal():
		end := now
		s.EndTime = &end
	}

	s.State = next
	s.touch()
	return nil
}

// AddTags inserts tags into the session's tag set, keeping it sorted and
// deduplicated.
func (s *Session) AddTags(tags ...string) error {
	if s.State.Terminal() {
		return fmt.Errorf("%w: tag %s session", ErrInvalidTransition, s.State)
	}

	present := make(map[string]bool, len(s.Tags))
	for _, t := range s.Tags {
		present[t] = true
	}
	for _, t := range tags {
		if t == "" || present[t] {
			continue
		}
		present[t] = true
		s.Tags = append(s.Tags, t)
	}
	sort.Strings(s.Tags)
	s.touch()
	return nil
}

// RemoveTags removes tags from the session's tag set. Missing tags are ignored.
func (s *Session) RemoveTags(tags ...string) error {
	if s.State.Terminal() {
		return fmt.Errorf("%w: tag %s session", ErrInvalidTransition, s.State)
	}

	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[t] = true
	}
	kept := s.Tags[:0]
	for _, t := range s.Tags {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	s.Tags = kept
	s.touch()
	return nil
}

// SetCustomFields merges the given fields into the session's custom field map.
func (s *Session) SetCustomFields(fields map[string]string) error {
	if s.State.Terminal() {
		return fmt.Errorf("%w: update fields on %s session", ErrInvalidTransition, s.State)
	}

	if s.CustomFields == nil {
		s.CustomFields = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		s.CustomFields[k] = v
	}
	s.touch()
	return nil
}

// SetPersona replaces the persona reference and appends a SYSTEM message
// documenting the switch. Prior history is untouched.
func (s *Session) SetPersona(ref PersonaRef) error {
	if s.State.Terminal() {
		return fmt.Errorf("%w: switch persona on %s session", ErrInvalidTransition, s.State)
	}

	prior := s.Persona.Name
	if _, err := s.Append(RoleSystem, fmt.Sprintf("persona switched from %s to %s", prior, ref.Name), nil); err != nil {
		return err
	}
	s.Persona = ref
	return nil
}

// MessageCount returns the number of messages in the history.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// Duration returns the elapsed conversation time: end minus start for a
// finished session, now minus start otherwise, and zero before the session
// has started.
func (s *Session) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	clone := *s

	clone.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		clone.Messages[i] = m
		if m.Metadata != nil {
			meta := make(map[string]string, len(m.Metadata))
			for k, v := range m.Metadata {
				meta[k] = v
			}
			clone.Messages[i].Metadata = meta
		}
	}

	if s.Tags != nil {
		clone.Tags = append([]string(nil), s.Tags...)
	}
	if s.CustomFields != nil {
		fields := make(map[string]string, len(s.CustomFields))
		for k, v := range s.CustomFields {
			fields[k] = v
		}
		clone.CustomFields = fields
	}
	if s.EndTime != nil {
		end := *s.EndTime
		clone.EndTime = &end
	}
	if s.Config.AutoSave != nil {
		auto := *s.Config.AutoSave
		clone.Config.AutoSave = &auto
	}

	return &clone
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
