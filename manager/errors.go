package manager

import "errors"

// Sentinel errors for session store operations. Persona lookups surface
// persona.ErrNotFound; state-machine and validation failures surface the
// session package sentinels.
var (
	// ErrSessionNotFound is returned when no session exists under the id,
	// neither in the active cache nor in the persistent store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPersistence is returned when a write of the full session record or
	// its metadata projection fails. A metadata-only failure is recoverable:
	// the projection is rebuilt from the full record on the next load.
	ErrPersistence = errors.New("persistence failed")
)
