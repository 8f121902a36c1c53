// Package draftstore keeps small string slots in a local JSON file. Every
// change rewrites the file through a synced temp file and a rename, so a
// crash leaves either the old or the new contents.
package draftstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tinytelemetry/mockview/internal/atomicfile"
)

// Store is a file-backed map of string slots.
type Store struct {
	mu    sync.Mutex
	path  string
	slots map[string]string
}

// Open loads path, creating its directory if needed. A missing file is an
// empty store; an unreadable one is an error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("draftstore: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("draftstore: mkdir: %w", err)
	}

	s := &Store{path: path, slots: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("draftstore: read: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.slots); err != nil {
		return nil, fmt.Errorf("draftstore: decode %s: %w", path, err)
	}
	return s, nil
}

// Load returns the value stored under key.
func (s *Store) Load(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[key]
	return v, ok, nil
}

// Save stores value under key and persists the store.
func (s *Store) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.slots[key]
	if had && prev == value {
		return nil
	}
	s.slots[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.slots[key] = prev
		} else {
			delete(s.slots, key)
		}
		return err
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.slots[key]
	if !had {
		return nil
	}
	delete(s.slots, key)
	if err := s.flush(); err != nil {
		s.slots[key] = prev
		return err
	}
	return nil
}

func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.slots, "", "  ")
	if err != nil {
		return fmt.Errorf("draftstore: encode: %w", err)
	}

	if err := atomicfile.Write(s.path, data, 0o600); err != nil {
		return fmt.Errorf("draftstore: %w", err)
	}
	return nil
}
