package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"osassist/internal/fileutil"
)

const lockRetryDelay = 25 * time.Millisecond

// Store reads and replaces the settings document at a fixed path.
type Store struct {
	path string
	// mu serializes goroutines; flock only excludes other processes.
	mu   sync.Mutex
	lock *flock.Flock
}

// NewStore returns a Store for path. The file does not need to exist.
func NewStore(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the settings document location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted document, or the defaults when none exists.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) (Settings, error) {
	doc := Default()
	if err := json.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("%w: parse settings JSON: %v", ErrMalformed, err)
	}
	doc.normalize()
	return doc, nil
}

// Save replaces the whole document.
func (s *Store) Save(ctx context.Context, doc Settings) (SaveResult, error) {
	if err := s.acquire(ctx); err != nil {
		return SaveResult{}, err
	}
	defer s.release()
	return s.write(doc)
}

// Update applies fn to the current document and saves the result under the
// store lock. Nothing is written when fn fails.
func (s *Store) Update(ctx context.Context, fn func(*Settings) error) (SaveResult, error) {
	if err := s.acquire(ctx); err != nil {
		return SaveResult{}, err
	}
	defer s.release()

	doc, err := s.Load()
	if err != nil {
		return SaveResult{}, err
	}
	if err := fn(&doc); err != nil {
		return SaveResult{}, err
	}
	return s.write(doc)
}

func (s *Store) write(doc Settings) (SaveResult, error) {
	doc.normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return SaveResult{}, fmt.Errorf("serialize settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return SaveResult{}, fmt.Errorf("ensure settings directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return SaveResult{}, fmt.Errorf("write settings file: %w", err)
	}
	return SaveResult{Settings: doc, Path: s.path}, nil
}

func (s *Store) acquire(ctx context.Context) error {
	s.mu.Lock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("ensure settings directory: %w", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err == nil && !locked {
		err = fmt.Errorf("%s is busy", s.path)
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("lock settings file: %w", err)
	}
	return nil
}

func (s *Store) release() {
	_ = s.lock.Unlock()
	s.mu.Unlock()
}
