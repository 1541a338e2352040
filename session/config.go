package session

import "time"

const defaultMaxHistory = 50

// Config holds per-session behavior knobs. MaxHistory is the context window
// size in messages: 0 sends only the pending client message on a turn, and a
// negative value disables truncation entirely. AutoSave nil means enabled.
type Config struct {
	MaxHistory       int            `json:"max_history"`
	AutoSave         *bool          `json:"auto_save,omitempty"`
	AutoSaveInterval time.Duration  `json:"auto_save_interval,omitempty"`
}

// DefaultConfig returns the default session configuration: a 50-message
// window with synchronous auto-save.
func DefaultConfig() Config {
	return Config{MaxHistory: defaultMaxHistory}
}

// AutoSaveEnabled reports whether mutations trigger synchronous persistence.
func (c Config) AutoSaveEnabled() bool {
	return c.AutoSave == nil || *c.AutoSave
}

// Merge applies explicitly-set values from source into c.
func (c *Config) Merge(source *Config) {
	if source.MaxHistory != 0 {
		c.MaxHistory = source.MaxHistory
	}
	if source.AutoSave != nil {
		c.AutoSave = source.AutoSave
	}
	if source.AutoSaveInterval > 0 {
		c.AutoSaveInterval = source.AutoSaveInterval
	}
}
