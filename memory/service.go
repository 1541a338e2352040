// Package memory defines the long-term memory collaborator consumed by the
// turn pipeline. Retrieval failures degrade a turn to empty context and
// recording is fire-and-forget; neither ever fails a turn.
package memory

import "context"

// Service supplies retrieved context for a turn and records completed turns
// for future retrieval. Implementations must be safe for concurrent use.
type Service interface {
	// Context returns memory text relevant to the query for the given
	// client. An empty string means no context is available.
	Context(ctx context.Context, clientID, query string) (string, error)
	// RecordTurn stores a completed client/assistant exchange.
	RecordTurn(ctx context.Context, clientID, userText, assistantText string) error
}

// NoopService is a Service that remembers nothing.
type NoopService struct{}

func (NoopService) Context(context.Context, string, string) (string, error) {
	return "", nil
}

func (NoopService) RecordTurn(context.Context, string, string, string) error {
	return nil
}
