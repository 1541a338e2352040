// Package persona supplies read-only behavioral descriptors for the AI side
// of a conversation. A persona is resolved by name from a catalog; sessions
// cache a snapshot of the descriptor at creation or switch time.
package persona

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a catalog has no persona under the given name.
var ErrNotFound = errors.New("persona not found")

// Descriptor is a named persona definition. SystemPrompt is the base system
// prompt sent on every turn; ConversationStyle is optional framing text
// appended to it.
type Descriptor struct {
	Name              string `json:"name" yaml:"name"`
	DisplayName       string `json:"display_name" yaml:"display_name"`
	SystemPrompt      string `json:"system_prompt" yaml:"system_prompt"`
	ConversationStyle string `json:"conversation_style,omitempty" yaml:"conversation_style,omitempty"`
}

// Provider resolves persona descriptors by name.
type Provider interface {
	// Descriptor returns the persona registered under name, or ErrNotFound.
	Descriptor(ctx context.Context, name string) (*Descriptor, error)
	// Names returns all registered persona names, sorted.
	Names(ctx context.Context) ([]string, error)
}
