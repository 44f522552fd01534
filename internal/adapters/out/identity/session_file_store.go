package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/application/usecase"
)

// SessionFileStore persists the session blob as a JSON file. It backs a
// single session engine instance; concurrent writers within the process are
// serialized with a mutex.
type SessionFileStore struct {
	path string
	mu   sync.Mutex
}

func NewSessionFileStore(path string) *SessionFileStore {
	return &SessionFileStore{path: path}
}

func (s *SessionFileStore) Load() (*usecase.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec usecase.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &rec, nil
}

func (s *SessionFileStore) Save(rec *usecase.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	// Write-then-rename keeps a crash from leaving a torn blob behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionFileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

var _ usecase.SessionStore = (*SessionFileStore)(nil)
