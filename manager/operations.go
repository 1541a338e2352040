package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parley-labs/parley/observability"
	"github.com/parley-labs/parley/session"
	"github.com/parley-labs/parley/store"
)

// AppendMessage validates and appends a message to the session, auto-firing
// the CREATED→ACTIVE or PAUSED→ACTIVE transition, and persists per the
// session's auto-save policy. The appended message is returned.
func (m *Manager) AppendMessage(ctx context.Context, id string, role session.Role, content string, metadata map[string]string) (session.Message, error) {
	var msg session.Message
	err := m.mutate(ctx, id, func(s *session.Session) error {
		var err error
		msg, err = s.Append(role, content, metadata)
		return err
	})
	return msg, err
}

// Transition runs a lifecycle event through the session's state machine and
// returns a snapshot of the updated session.
func (m *Manager) Transition(ctx context.Context, id string, event session.Event) (*session.Session, error) {
	var snapshot *session.Session
	err := m.mutate(ctx, id, func(s *session.Session) error {
		from := s.State
		if err := s.Apply(event); err != nil {
			return err
		}
		snapshot = s.Clone()

		m.emit(ctx, EventStateChange, observability.LevelInfo, "manager.Transition", map[string]any{
			"session_id": id,
			"event":      string(event),
			"from":       string(from),
			"to":         string(s.State),
		})
		return nil
	})
	return snapshot, err
}

// SwitchPersona updates the session's persona reference to a fresh snapshot
// of the named persona and appends a SYSTEM message documenting the switch.
// Prior history is untouched.
func (m *Manager) SwitchPersona(ctx context.Context, id, personaName string) (*session.Session, error) {
	desc, err := m.personas.Descriptor(ctx, personaName)
	if err != nil {
		return nil, err
	}

	var snapshot *session.Session
	err = m.mutate(ctx, id, func(s *session.Session) error {
		from := s.Persona.Name
		if err := s.SetPersona(session.PersonaRef{Name: personaName, Descriptor: *desc}); err != nil {
			return err
		}
		snapshot = s.Clone()

		m.emit(ctx, EventPersonaSwitch, observability.LevelInfo, "manager.SwitchPersona", map[string]any{
			"session_id": id,
			"from":       from,
			"to":         personaName,
		})
		return nil
	})
	return snapshot, err
}

// AddTags inserts tags into the session's tag set.
func (m *Manager) AddTags(ctx context.Context, id string, tags ...string) error {
	return m.mutate(ctx, id, func(s *session.Session) error {
		return s.AddTags(tags...)
	})
}

// RemoveTags removes tags from the session's tag set.
func (m *Manager) RemoveTags(ctx context.Context, id string, tags ...string) error {
	return m.mutate(ctx, id, func(s *session.Session) error {
		return s.RemoveTags(tags...)
	})
}

// UpdateCustomFields merges fields into the session's custom field map.
func (m *Manager) UpdateCustomFields(ctx context.Context, id string, fields map[string]string) error {
	return m.mutate(ctx, id, func(s *session.Session) error {
		return s.SetCustomFields(fields)
	})
}

// Filter narrows List results. Zero-valued fields match everything.
type Filter struct {
	ClientID string
	State    session.State
}

// List returns metadata projections for persisted sessions matching the
// filter, built from metadata records only — full session records are never
// loaded. Corrupt metadata records are skipped and observed.
func (m *Manager) List(ctx context.Context, filter Filter) ([]session.Metadata, error) {
	keys, err := m.store.ListKeys(ctx, store.CollectionMetadata)
	if err != nil {
		return nil, fmt.Errorf("%w: list metadata keys: %v", ErrPersistence, err)
	}

	out := make([]session.Metadata, 0, len(keys))
	for _, key := range keys {
		data, err := m.store.Load(ctx, store.CollectionMetadata, key)
		if err != nil {
			continue
		}

		var md session.Metadata
		if err := json.Unmarshal(data, &md); err != nil {
			m.emit(ctx, EventError, observability.LevelWarning, "manager.List", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}

		if filter.ClientID != "" && md.ClientID != filter.ClientID {
			continue
		}
		if filter.State != "" && md.State != filter.State {
			continue
		}
		out = append(out, md)
	}
	return out, nil
}

// mutate runs fn under the per-id lock and applies the auto-save policy when
// fn succeeds. Rejected mutations leave both the session and the store
// untouched.
func (m *Manager) mutate(ctx context.Context, id string, fn func(s *session.Session) error) error {
	e, err := m.entryFor(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.sess); err != nil {
		return err
	}
	return m.persistEntry(ctx, e)
}
