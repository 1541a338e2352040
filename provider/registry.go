package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors.
var (
	ErrEmptyName = errors.New("provider name must not be empty")
	ErrExists    = errors.New("provider already registered")
)

// Registry manages named backend configurations with lazy instantiation.
// Configs are stored at registration time; providers are created on first
// Get call. Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	defName   string
	configs   map[string]Config
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:   make(map[string]Config),
		providers: make(map[string]Provider),
	}
}

// Register adds a named backend configuration to the registry. The first
// registered name becomes the default backend unless SetDefault overrides it.
func (r *Registry) Register(name string, cfg Config) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}

	r.configs[name] = cfg
	if r.defName == "" {
		r.defName = name
	}
	return nil
}

// RegisterProvider installs an already-constructed provider under name,
// bypassing config-driven instantiation. Used for mocks and custom backends.
func (r *Registry) RegisterProvider(name string, p Provider) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}

	r.providers[name] = p
	if _, configured := r.configs[name]; !configured {
		r.configs[name] = Config{Backend: p.Name()}
	}
	if r.defName == "" {
		r.defName = name
	}
	return nil
}

// SetDefault marks a registered backend as the one Get("") resolves to.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	r.defName = name
	return nil
}

// Get retrieves a named provider, instantiating it lazily on first access.
// The empty name resolves to the default backend.
func (r *Registry) Get(ctx context.Context, name string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = r.defName
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no backends registered", ErrNotFound)
	}

	if p, exists := r.providers[name]; exists {
		return p, nil
	}

	cfg, registered := r.configs[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	p, err := New(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("create provider %q: %w", name, err)
	}

	r.providers[name] = p
	return p, nil
}

// Names returns all registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
