package session

import "time"

// Metadata is a denormalized projection of a Session used for listing and
// filtering without loading full message bodies. It is always derivable from
// the full record and must match the last successfully persisted Session.
type Metadata struct {
	ID           string            `json:"id"`
	ClientID     string            `json:"client_id"`
	Type         Type              `json:"type"`
	PersonaName  string            `json:"persona_name"`
	State        State             `json:"state"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	StartTime    time.Time         `json:"start_time,omitzero"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	MessageCount int               `json:"message_count"`
	Duration     time.Duration     `json:"duration"`
	Tags         []string          `json:"tags,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// Metadata derives the projection from the session's current state.
func (s *Session) Metadata() Metadata {
	md := Metadata{
		ID:           s.ID,
		ClientID:     s.ClientID,
		Type:         s.Type,
		PersonaName:  s.Persona.Name,
		State:        s.State,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		StartTime:    s.StartTime,
		MessageCount: len(s.Messages),
		Duration:     s.Duration(),
	}
	if s.EndTime != nil {
		end := *s.EndTime
		md.EndTime = &end
	}
	if s.Tags != nil {
		md.Tags = append([]string(nil), s.Tags...)
	}
	if len(s.CustomFields) > 0 {
		fields := make(map[string]string, len(s.CustomFields))
		for k, v := range s.CustomFields {
			fields[k] = v
		}
		md.CustomFields = fields
	}
	return md
}
