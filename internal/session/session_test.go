package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brizzai/backoffice/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get()
	assert.False(t, ok, "new store has no session")

	user := &User{ID: 7, Email: "ana@agency.test", Name: "Ana"}
	s.LoginSuccess(user, "A1", "R1")

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, Credentials{AccessToken: "A1", RefreshToken: "R1"}, got.Credentials)
	assert.Equal(t, user, got.User)

	s.Set(got.WithCredentials("A2", "R2"))
	got, ok = s.Get()
	require.True(t, ok)
	assert.Equal(t, "A2", got.Credentials.AccessToken)
	assert.Equal(t, "R2", got.Credentials.RefreshToken)
	assert.Equal(t, "Ana", got.User.Name, "user profile survives a token swap")

	s.Logout()
	_, ok = s.Get()
	assert.False(t, ok)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	s.LoginSuccess(nil, "A1", "R1")

	got, _ := s.Get()
	got.Credentials.AccessToken = "tampered"

	again, _ := s.Get()
	assert.Equal(t, "A1", again.Credentials.AccessToken)
}

func TestMemoryStore_SetEmptyClears(t *testing.T) {
	s := NewMemoryStore()
	s.LoginSuccess(nil, "A1", "R1")
	s.Set(&State{})

	_, ok := s.Get()
	assert.False(t, ok)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.LoginSuccess(nil, "A", "R")
		}()
		go func() {
			defer wg.Done()
			s.Get()
		}()
	}
	wg.Wait()

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "A", got.Credentials.AccessToken)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	cfg := &config.SessionConfig{File: path}

	first := NewFileStore(cfg)
	_, ok := first.Get()
	assert.False(t, ok)

	first.LoginSuccess(&User{Email: "ana@agency.test"}, "A1", "R1")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := NewFileStore(cfg)
	got, ok := second.Get()
	require.True(t, ok)
	assert.Equal(t, "A1", got.Credentials.AccessToken)
	assert.Equal(t, "R1", got.Credentials.RefreshToken)
	assert.Equal(t, "ana@agency.test", got.User.Email)

	second.Logout()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "logout removes the session file")

	third := NewFileStore(cfg)
	_, ok = third.Get()
	assert.False(t, ok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("credentials: [not, a, map"), 0o600))

	s := NewFileStore(&config.SessionConfig{File: path})
	_, ok := s.Get()
	assert.False(t, ok)
}

func TestFileStore_NoPath(t *testing.T) {
	s := NewFileStore(&config.SessionConfig{})
	s.LoginSuccess(nil, "A1", "R1")

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "A1", got.Credentials.AccessToken)
	assert.Empty(t, s.Path())
}

func TestFileStore_ConcurrentWritesMatchMemory(t *testing.T) {
	cfg := &config.SessionConfig{File: filepath.Join(t.TempDir(), "session.yaml")}
	s := NewFileStore(cfg)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.LoginSuccess(nil, fmt.Sprintf("A%d", i), fmt.Sprintf("R%d", i))
		}(i)
		go func() {
			defer wg.Done()
			s.Logout()
		}()
	}
	wg.Wait()

	inMemory, memOK := s.Get()
	onDisk, diskOK := NewFileStore(cfg).Get()
	require.Equal(t, memOK, diskOK)
	if memOK {
		assert.Equal(t, inMemory.Credentials, onDisk.Credentials)
	}
}
