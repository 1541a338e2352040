package persona

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// StaticCatalog is an in-memory Provider, primarily for tests and embedded
// defaults. Thread-safe for concurrent access.
type StaticCatalog struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
}

// NewStaticCatalog creates a catalog pre-populated with the given descriptors,
// keyed by Descriptor.Name.
func NewStaticCatalog(descriptors ...Descriptor) *StaticCatalog {
	c := &StaticCatalog{entries: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		c.entries[d.Name] = d
	}
	return c
}

// Register adds or replaces a descriptor in the catalog.
func (c *StaticCatalog) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty persona name", ErrNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[d.Name] = d
	return nil
}

func (c *StaticCatalog) Descriptor(_ context.Context, name string) (*Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &d, nil
}

func (c *StaticCatalog) Names(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
