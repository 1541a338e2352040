package store

import "fmt"

// Backend names accepted by Config.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds store initialization parameters.
type Config struct {
	Backend string `json:"backend,omitempty"` // "file" or "sqlite"
	Path    string `json:"path,omitempty"`    // FileStore root directory or SQLite database file
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendFile}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// New creates a Store from configuration.
func New(cfg *Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
