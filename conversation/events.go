package conversation

import "github.com/parley-labs/parley/observability"

// Turn pipeline event types, one per pipeline stage.
const (
	EventTurnReceived  observability.EventType = "turn.received"
	EventContextBuilt  observability.EventType = "turn.context_built"
	EventGenerating    observability.EventType = "turn.generating"
	EventTurnCommitted observability.EventType = "turn.committed"
	EventTurnFailed    observability.EventType = "turn.failed"
	EventMemoryError   observability.EventType = "turn.memory_error"
)
