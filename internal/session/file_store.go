package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/brizzai/backoffice/internal/config"
	"github.com/brizzai/backoffice/internal/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileStore keeps the session in memory and mirrors every change to a YAML
// file, so separate CLI invocations share one login.
type FileStore struct {
	*MemoryStore
	path string
	// mu serializes a memory update with its file write
	mu sync.Mutex
}

// NewFileStore opens the session file at cfg.File. A missing file means no
// session; an unreadable one is logged and ignored.
func NewFileStore(cfg *config.SessionConfig) *FileStore {
	s := &FileStore{MemoryStore: NewMemoryStore(), path: cfg.File}
	if err := s.load(); err != nil {
		logger.Warn("Ignoring unreadable session file", zap.String("file", s.path), zap.Error(err))
	}
	return s
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode session file: %w", err)
	}
	s.MemoryStore.Set(&state)
	return nil
}

func (s *FileStore) Set(state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MemoryStore.Set(state)
	s.persist()
}

func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MemoryStore.Clear()
	s.persist()
}

func (s *FileStore) LoginSuccess(user *User, access, refresh string) {
	s.Set(&State{
		User:        user,
		Credentials: Credentials{AccessToken: access, RefreshToken: refresh},
	})
}

func (s *FileStore) Logout() {
	s.Clear()
}

// persist writes the current state, with s.mu held; failures are logged because the
// in-memory session is still valid for this process
func (s *FileStore) persist() {
	if s.path == "" {
		return
	}
	if err := s.write(); err != nil {
		logger.Error("Failed to persist session", zap.String("file", s.path), zap.Error(err))
	}
}

func (s *FileStore) write() error {
	state, ok := s.MemoryStore.Get()
	if !ok {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
