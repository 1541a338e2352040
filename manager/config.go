package manager

import (
	"time"

	"github.com/parley-labs/parley/session"
)

// Config holds session store initialization parameters.
type Config struct {
	// SessionDefaults applies to sessions created without an explicit
	// per-session configuration.
	SessionDefaults session.Config `json:"session_defaults"`

	// FlushInterval enables a background pass that persists sessions
	// mutated while auto-save is off. Zero disables the pass; dirty
	// sessions are then written only on Flush or Close.
	FlushInterval time.Duration `json:"flush_interval,omitempty"`
}

// DefaultConfig returns the default session store configuration.
func DefaultConfig() Config {
	return Config{SessionDefaults: session.DefaultConfig()}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.SessionDefaults.Merge(&source.SessionDefaults)
	if source.FlushInterval > 0 {
		c.FlushInterval = source.FlushInterval
	}
}
