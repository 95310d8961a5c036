package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// storeFilePermissions restricts the schedule state file to the owner.
const storeFilePermissions = 0o600

// FileStore persists last fire times to a JSON file on disk, keyed by task
// name and stored as integer epoch seconds. A missing file, a missing key
// and a zero value all mean "never fired".
type FileStore struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileStore creates a store that reads/writes JSON at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// LastAlarm returns the persisted fire time for the task, or the zero time
// when the task never fired.
func (s *FileStore) LastAlarm(_ context.Context, name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return time.Time{}, err
	}

	epoch := state[name]
	if epoch == 0 {
		return time.Time{}, nil
	}

	return time.Unix(epoch, 0), nil
}

// SetLastAlarm records the fire time for the task.
func (s *FileStore) SetLastAlarm(_ context.Context, name string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	state[name] = t.Unix()

	return s.save(state)
}

// ClearLastAlarm resets the task to "never fired".
func (s *FileStore) ClearLastAlarm(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := state[name]; !ok {
		return nil
	}

	delete(state, name)

	return s.save(state)
}

// load reads the state map from disk. Callers must hold mu.
func (s *FileStore) load() (map[string]int64, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]int64), nil
		}

		return nil, fmt.Errorf("read schedule state: %w", err)
	}

	state := make(map[string]int64)
	if err := json.Unmarshal(contents, &state); err != nil {
		return nil, fmt.Errorf("decode schedule state: %w", err)
	}

	return state, nil
}

// save writes the state map to disk. Callers must hold mu.
func (s *FileStore) save(state map[string]int64) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode schedule state: %w", err)
	}

	if err := os.WriteFile(s.path, data, storeFilePermissions); err != nil {
		return fmt.Errorf("write schedule state: %w", err)
	}

	return nil
}
