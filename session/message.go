package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleClient    Role = "client"
	RoleAssistant Role = "assistant"
	// RoleInternal marks bookkeeping messages that are stored with the
	// session but never forwarded to a generation backend.
	RoleInternal Role = "internal"
)

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleClient, RoleAssistant, RoleInternal:
		return true
	}
	return false
}

// Message is a single entry in a session's conversation history. Messages are
// immutable once appended: the session only ever grows its history and never
// rewrites or reorders existing entries.
type Message struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// newMessage builds a validated message with a fresh UUIDv7 id.
func newMessage(role Role, content string, metadata map[string]string) (Message, error) {
	if !role.IsValid() {
		return Message{}, fmt.Errorf("%w: unknown role %q", ErrValidation, string(role))
	}
	if content == "" {
		return Message{}, fmt.Errorf("%w: empty message content", ErrValidation)
	}

	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}

	return Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  meta,
	}, nil
}
