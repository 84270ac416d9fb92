// Package yamlstore implements config.Store backed by a flat YAML file.
//
// The file format is flat key-value pairs where dotted keys (e.g.
// "defaults.priority") are literal strings, not nested paths.
// yaml.Marshal on map[string]string produces alphabetical key ordering,
// making the output deterministic and diff-friendly.
package yamlstore

import (
	"fmt"
	"maps"
	"os"
	"time"

	"tasktree/internal/config"
	"tasktree/internal/fsutil"

	"gopkg.in/yaml.v3"
)

// lockTimeout bounds how long Set and Unset wait for another writer.
const lockTimeout = 5 * time.Second

// YAMLStore implements config.Store using a YAML file on disk.
type YAMLStore struct {
	path string
	data map[string]string
}

// New creates a YAMLStore that reads from and writes to path.
// If the file exists it is loaded; if it does not exist the store
// starts empty and the file is created on the first Set call.
func New(path string) (*YAMLStore, error) {
	s := &YAMLStore{path: path}
	data, err := read(path)
	if err != nil {
		return nil, err
	}
	s.data = data
	return s, nil
}

// Path returns the config file location.
func (s *YAMLStore) Path() string {
	return s.path
}

// Get returns the value for key and whether it was found.
func (s *YAMLStore) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set validates and writes key=value, then persists to disk. Values of
// unknown keys are stored as-is.
func (s *YAMLStore) Set(key, value string) error {
	if err := config.ValidateValue(key, value); err != nil {
		return err
	}
	return s.update(func(data map[string]string) {
		data[key] = value
	})
}

// SetInMemory writes key=value to the in-memory store without persisting.
func (s *YAMLStore) SetInMemory(key, value string) {
	s.data[key] = value
}

// Unset removes key and persists to disk.
func (s *YAMLStore) Unset(key string) error {
	return s.update(func(data map[string]string) {
		delete(data, key)
	})
}

// All returns a copy of all key-value pairs.
func (s *YAMLStore) All() map[string]string {
	return maps.Clone(s.data)
}

// update takes the file lock, re-reads the file so writes from other
// processes are kept, applies fn and writes the result back atomically.
// In-memory overrides set before the call are dropped.
func (s *YAMLStore) update(fn func(map[string]string)) error {
	return fsutil.WithLock(s.path+".lock", lockTimeout, func() error {
		fresh, err := read(s.path)
		if err != nil {
			return err
		}
		fn(fresh)

		raw, err := yaml.Marshal(fresh)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if err := fsutil.AtomicWrite(s.path, raw); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		s.data = fresh
		return nil
	})
}

// read loads the flat map from path. A missing or empty file is an empty map.
func read(path string) (map[string]string, error) {
	data := make(map[string]string)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if data == nil {
		data = make(map[string]string)
	}
	return data, nil
}

// Compile-time check that YAMLStore implements config.Store.
var _ config.Store = (*YAMLStore)(nil)
