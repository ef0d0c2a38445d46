package session

import "sync"

// User is the profile of the signed-in staff member, as returned at login
type User struct {
	ID    any    `yaml:"id,omitempty" json:"id,omitempty"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Role  string `yaml:"role,omitempty" json:"role,omitempty"`
}

// Credentials is the token pair of a session
type Credentials struct {
	AccessToken  string `yaml:"access_token" json:"access_token"`
	RefreshToken string `yaml:"refresh_token" json:"refresh_token"`
}

// State is everything the store holds about the current session
type State struct {
	User        *User       `yaml:"user,omitempty" json:"user,omitempty"`
	Credentials Credentials `yaml:"credentials" json:"credentials"`
}

// WithCredentials returns a copy of s carrying new tokens and the same user
func (s State) WithCredentials(access, refresh string) *State {
	s.Credentials = Credentials{AccessToken: access, RefreshToken: refresh}
	return &s
}

// Provider is the session dependency of the HTTP client
type Provider interface {
	// Get returns the current session, or false when signed out
	Get() (*State, bool)
	// Set replaces the whole session
	Set(state *State)
	// Clear signs out
	Clear()
}

// Store is a Provider that also carries the login and logout actions
type Store interface {
	Provider
	LoginSuccess(user *User, access, refresh string)
	Logout()
}

// MemoryStore is a Provider held in memory. Writes replace the whole state; last writer wins.
type MemoryStore struct {
	mu    sync.RWMutex
	state *State
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil, false
	}
	cp := *m.state
	return &cp, true
}

func (m *MemoryStore) Set(state *State) {
	if state == nil || state.Credentials.AccessToken == "" {
		m.Clear()
		return
	}
	cp := *state
	m.mu.Lock()
	m.state = &cp
	m.mu.Unlock()
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	m.state = nil
	m.mu.Unlock()
}

// LoginSuccess records a fresh login
func (m *MemoryStore) LoginSuccess(user *User, access, refresh string) {
	m.Set(&State{
		User:        user,
		Credentials: Credentials{AccessToken: access, RefreshToken: refresh},
	})
}

// Logout ends the session
func (m *MemoryStore) Logout() {
	m.Clear()
}
