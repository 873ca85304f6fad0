package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PrefsFileName is the settings file inside the data directory.
const PrefsFileName = "dresscode_prefs.json"

// PrefsFSStore — файловое key-value хранилище настроек CLI (JSON, права 0600).
// The file is read once and rewritten in full on every change.
type PrefsFSStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenPrefs loads the settings file in dir, creating the directory when missing.
// A missing file is an empty store.
func OpenPrefs(dir string) (*PrefsFSStore, error) {
	if dir == "" {
		return nil, errors.New("empty prefs dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	s := &PrefsFSStore{path: filepath.Join(dir, PrefsFileName), values: map[string]string{}}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// Path returns the settings file location.
func (s *PrefsFSStore) Path() string { return s.path }

// Get returns the value of key and whether it is present.
func (s *PrefsFSStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Put stores one value.
func (s *PrefsFSStore) Put(key, value string) error {
	return s.PutAll(map[string]string{key: value})
}

// PutAll stores several values with a single file write.
func (s *PrefsFSStore) PutAll(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return s.flush()
}

// Remove deletes keys; absent keys are ignored.
func (s *PrefsFSStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return s.flush()
}

// flush пишет файл целиком: временный файл, затем rename.
func (s *PrefsFSStore) flush() error {
	b, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
