package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type fileStore struct {
	root string
}

// NewFileStore creates a Store backed by the filesystem. Each record lives at
// root/collection/key.json; writes go through a temp file and rename so a
// crash never leaves a partially written record.
func NewFileStore(root string) Store {
	return &fileStore{root: root}
}

func (s *fileStore) path(collection, key string) string {
	return filepath.Join(s.root, collection, key+".json")
}

func (s *fileStore) Save(_ context.Context, collection, key string, value []byte) error {
	path := s.path(collection, key)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrSaveFailed, collection, key, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrSaveFailed, collection, key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s/%s: %v", ErrSaveFailed, collection, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s/%s: %v", ErrSaveFailed, collection, key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s/%s: %v", ErrSaveFailed, collection, key, err)
	}

	return nil
}

func (s *fileStore) Load(_ context.Context, collection, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(collection, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrKeyNotFound, collection, key)
		}
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrLoadFailed, collection, key, err)
	}
	return data, nil
}

func (s *fileStore) Delete(_ context.Context, collection, key string) error {
	if err := os.Remove(s.path(collection, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete failed: %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *fileStore) ListKeys(_ context.Context, collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, collection, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}
