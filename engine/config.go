package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/parley-labs/parley/manager"
	"github.com/parley-labs/parley/persona"
	"github.com/parley-labs/parley/provider"
	"github.com/parley-labs/parley/store"
)

// PersonasConfig locates the persona catalog: a directory of YAML files,
// inline descriptors, or both (inline wins on name collisions).
type PersonasConfig struct {
	Path    string               `json:"path,omitempty"`
	Inline  []persona.Descriptor `json:"inline,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *PersonasConfig) Merge(source *PersonasConfig) {
	if source.Path != "" {
		c.Path = source.Path
	}
	if len(source.Inline) > 0 {
		c.Inline = source.Inline
	}
}

// MemoryConfig controls the long-term memory collaborator. Disabled memory
// degrades every turn to empty context.
type MemoryConfig struct {
	Enabled  bool `json:"enabled"`
	Window   int  `json:"window,omitempty"`
	Capacity int  `json:"capacity,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *MemoryConfig) Merge(source *MemoryConfig) {
	if source.Enabled {
		c.Enabled = true
	}
	if source.Window > 0 {
		c.Window = source.Window
	}
	if source.Capacity > 0 {
		c.Capacity = source.Capacity
	}
}

// Config holds initialization parameters for all engine subsystems. Each
// section delegates to that subsystem's config-driven constructor.
type Config struct {
	Store     store.Config               `json:"store"`
	Personas  PersonasConfig             `json:"personas"`
	Provider  provider.Config            `json:"provider"`
	Providers map[string]provider.Config `json:"providers,omitempty"`
	Manager   manager.Config             `json:"manager"`
	Memory    MemoryConfig               `json:"memory"`

	// ProviderTimeoutSeconds bounds each generation call.
	ProviderTimeoutSeconds int `json:"provider_timeout_seconds,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Store:    store.DefaultConfig(),
		Provider: provider.DefaultConfig(),
		Manager:  manager.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Store.Merge(&source.Store)
	c.Personas.Merge(&source.Personas)
	c.Provider.Merge(&source.Provider)
	c.Manager.Merge(&source.Manager)
	c.Memory.Merge(&source.Memory)

	if len(source.Providers) > 0 {
		c.Providers = source.Providers
	}
	if source.ProviderTimeoutSeconds > 0 {
		c.ProviderTimeoutSeconds = source.ProviderTimeoutSeconds
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
