package persona

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileCatalog is a Provider backed by a directory of YAML descriptor files,
// one persona per file. The file stem is the persona name unless the document
// sets an explicit name. Files are parsed once on first access and cached.
type FileCatalog struct {
	root string

	mu      sync.RWMutex
	entries map[string]Descriptor
	loaded  bool
}

// NewFileCatalog creates a catalog over root. The directory is not read until
// the first Descriptor or Names call.
func NewFileCatalog(root string) *FileCatalog {
	return &FileCatalog{root: root}
}

func (c *FileCatalog) Descriptor(ctx context.Context, name string) (*Descriptor, error) {
	if err := c.load(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &d, nil
}

func (c *FileCatalog) Names(ctx context.Context) ([]string, error) {
	if err := c.load(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Reload discards the cached descriptors; the next access re-reads the
// directory.
func (c *FileCatalog) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.loaded = false
}

func (c *FileCatalog) load(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := os.ReadDir(c.root)
	if err != nil {
		return fmt.Errorf("read persona directory: %w", err)
	}

	entries := make(map[string]Descriptor)
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		ext := filepath.Ext(de.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(c.root, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read persona file %s: %w", de.Name(), err)
		}

		var d Descriptor
		if err := yaml.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("parse persona file %s: %w", de.Name(), err)
		}

		if d.Name == "" {
			d.Name = strings.TrimSuffix(de.Name(), ext)
		}
		if d.SystemPrompt == "" {
			return fmt.Errorf("persona file %s: missing system_prompt", de.Name())
		}
		entries[d.Name] = d
	}

	c.entries = entries
	c.loaded = true
	return nil
}
