// Package settings contains a persistent key-value store for user preferences,
// for example the directory with recordings.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/ShoshinNikita/screenshelf/pkg/fsx"
	"gopkg.in/yaml.v3"
)

var ErrInvalidKey = errors.New("invalid key")

// Store keeps all values in memory and saves them as a YAML file on every change.
type Store struct {
	path string

	mu     sync.RWMutex
	values map[string]any
}

// Open loads the store from the file. A missing file means an empty store, the file
// will be created on the first change.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]any),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("couldn't read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("couldn't parse settings file %q: %w", path, err)
	}
	if s.values == nil {
		// Empty file.
		s.values = make(map[string]any)
	}
	return s, nil
}

// Get returns the value of the key. ok is false if the key is not set.
func (s *Store) Get(key string) (value any, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok = s.values[key]
	return value, ok
}

// Set sets the value and saves the store. The value must be serializable to YAML.
func (s *Store) Set(key string, value any) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev := s.values[key]
	s.values[key] = value

	if err := s.save(); err != nil {
		if hadPrev {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Delete removes the key and saves the store. It is not an error to remove a missing key.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.values[key]
	if !ok {
		return nil
	}
	delete(s.values, key)

	if err := s.save(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// save must be called with the write lock held.
func (s *Store) save() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("couldn't serialize settings: %w", err)
	}
	if err := fsx.WriteFileAtomic(s.path, bytes.NewReader(data), 0o600); err != nil {
		return fmt.Errorf("couldn't write settings file: %w", err)
	}
	return nil
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	return nil
}
