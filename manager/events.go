package manager

import "github.com/parley-labs/parley/observability"

// Session store event types.
const (
	EventSessionCreate  observability.EventType = "manager.session.create"
	EventSessionLoad    observability.EventType = "manager.session.load"
	EventSessionSave    observability.EventType = "manager.session.save"
	EventSessionDelete  observability.EventType = "manager.session.delete"
	EventStateChange    observability.EventType = "manager.session.state"
	EventPersonaSwitch  observability.EventType = "manager.session.persona"
	EventMetadataRepair observability.EventType = "manager.metadata.repair"
	EventFlush          observability.EventType = "manager.flush"
	EventError          observability.EventType = "manager.error"
)
