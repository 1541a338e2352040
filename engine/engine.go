// Package engine wires the session core together: persistent store, persona
// catalog, provider registry, memory service, session manager, and the turn
// pipeline. It is the composition root embedders and the CLI build on.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/parley-labs/parley/conversation"
	"github.com/parley-labs/parley/manager"
	"github.com/parley-labs/parley/memory"
	"github.com/parley-labs/parley/observability"
	"github.com/parley-labs/parley/persona"
	"github.com/parley-labs/parley/provider"
	"github.com/parley-labs/parley/store"
)

// Engine owns the assembled subsystems. Construct with New, release with
// Close.
type Engine struct {
	store     store.Store
	ownsStore bool
	personas  persona.Provider
	providers *provider.Registry
	memory    memory.Service
	observer  observability.Observer

	sessions *manager.Manager
	handler  *conversation.Handler

	injected []namedProvider
}

type namedProvider struct {
	name string
	p    provider.Provider
}

// Option overrides a config-driven subsystem before the engine is assembled.
type Option func(*Engine)

// WithStore supplies a pre-built store. The engine will not close it.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithPersonas supplies a pre-built persona catalog.
func WithPersonas(p persona.Provider) Option {
	return func(e *Engine) { e.personas = p }
}

// WithProvider installs a pre-built backend under name. The first injected
// provider becomes the default backend, taking precedence over config-driven
// registrations.
func WithProvider(name string, p provider.Provider) Option {
	return func(e *Engine) { e.injected = append(e.injected, namedProvider{name: name, p: p}) }
}

// WithMemory supplies a pre-built memory service.
func WithMemory(svc memory.Service) Option {
	return func(e *Engine) { e.memory = svc }
}

// WithObserver sets the observer passed to every subsystem.
func WithObserver(o observability.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// New assembles an engine from configuration. Options take precedence over
// the corresponding config sections.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	e := &Engine{observer: observability.NoOpObserver{}}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		s, err := store.New(&cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("engine: initialize store: %w", err)
		}
		e.store = s
		e.ownsStore = true
	}

	if e.personas == nil {
		p, err := buildPersonas(&cfg.Personas)
		if err != nil {
			return nil, fmt.Errorf("engine: initialize personas: %w", err)
		}
		e.personas = p
	}

	if e.memory == nil {
		if cfg.Memory.Enabled {
			var recOpts []memory.StoreRecorderOption
			if cfg.Memory.Window > 0 {
				recOpts = append(recOpts, memory.WithWindow(cfg.Memory.Window))
			}
			if cfg.Memory.Capacity > 0 {
				recOpts = append(recOpts, memory.WithCapacity(cfg.Memory.Capacity))
			}
			e.memory = memory.NewStoreRecorder(e.store, recOpts...)
		} else {
			e.memory = memory.NoopService{}
		}
	}

	e.providers = provider.NewRegistry()
	if len(cfg.Providers) > 0 {
		// Sorted so the first-registered (default) backend is deterministic.
		names := make([]string, 0, len(cfg.Providers))
		for name := range cfg.Providers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := e.providers.Register(name, cfg.Providers[name]); err != nil {
				return nil, fmt.Errorf("engine: register provider %q: %w", name, err)
			}
		}
	} else {
		if err := e.providers.Register(cfg.Provider.Backend, cfg.Provider); err != nil {
			return nil, fmt.Errorf("engine: register provider: %w", err)
		}
	}

	for _, np := range e.injected {
		if err := e.providers.RegisterProvider(np.name, np.p); err != nil {
			return nil, fmt.Errorf("engine: register provider %q: %w", np.name, err)
		}
	}
	if len(e.injected) > 0 {
		if err := e.providers.SetDefault(e.injected[0].name); err != nil {
			return nil, fmt.Errorf("engine: set default provider: %w", err)
		}
	}

	e.sessions = manager.New(e.store, e.personas, cfg.Manager, manager.WithObserver(e.observer))

	handlerOpts := []conversation.Option{
		conversation.WithMemory(e.memory),
		conversation.WithObserver(e.observer),
	}
	if cfg.ProviderTimeoutSeconds > 0 {
		handlerOpts = append(handlerOpts, conversation.WithTimeout(time.Duration(cfg.ProviderTimeoutSeconds)*time.Second))
	}
	e.handler = conversation.NewHandler(e.sessions, e.providers, handlerOpts...)

	return e, nil
}

// buildPersonas resolves the catalog from config: a YAML directory, inline
// descriptors, or inline layered over the directory.
func buildPersonas(cfg *PersonasConfig) (persona.Provider, error) {
	switch {
	case cfg.Path != "" && len(cfg.Inline) > 0:
		return persona.Chain{
			persona.NewStaticCatalog(cfg.Inline...),
			persona.NewFileCatalog(cfg.Path),
		}, nil
	case cfg.Path != "":
		return persona.NewFileCatalog(cfg.Path), nil
	case len(cfg.Inline) > 0:
		return persona.NewStaticCatalog(cfg.Inline...), nil
	default:
		return nil, fmt.Errorf("no persona catalog configured")
	}
}

// Sessions returns the session manager.
func (e *Engine) Sessions() *manager.Manager { return e.sessions }

// Conversations returns the turn pipeline.
func (e *Engine) Conversations() *conversation.Handler { return e.handler }

// Providers returns the backend registry, so embedders can install additional
// backends after construction.
func (e *Engine) Providers() *provider.Registry { return e.providers }

// Personas returns the persona catalog.
func (e *Engine) Personas() persona.Provider { return e.personas }

// Close flushes unsaved sessions and releases resources the engine owns.
func (e *Engine) Close() error {
	err := e.sessions.Close()

	if e.ownsStore {
		if closer, ok := e.store.(interface{ Close() error }); ok {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
	}
	return err
}
