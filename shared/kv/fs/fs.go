// Package fs is a kv.Store keeping one JSON file per key under a root directory,
// the on-disk counterpart of browser local storage.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/itchan-dev/foro/shared/kv"
)

type Storage struct {
	rootPath string
	mu       sync.RWMutex
}

var _ kv.Store = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	// Use filepath.Clean to prevent path traversal issues like "data/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// path maps a key to a single file directly under the root; escaping keeps separators
// in keys from leaving it.
func (s *Storage) path(key string) string {
	return filepath.Join(s.rootPath, url.PathEscape(key)+".json")
}

func (s *Storage) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes to a temp file and renames it over the old value, so readers never see
// a half-written document.
func (s *Storage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.rootPath, ".kv-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit key %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
