// Package session holds the client's view of the authenticated session: the
// last-known token and user profile, persisted across restarts.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LoginRoute is the navigation target after a session teardown.
const LoginRoute = "/login"

// User is the subset of the profile the client keeps around.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// State is one immutable snapshot of the session. Authenticated is derived,
// never stored independently of the token.
type State struct {
	Token         string `json:"token"`
	User          *User  `json:"user"`
	Authenticated bool   `json:"-"`
}

// Store is the single owner of session state. All mutations go through one
// mutex, and every mutation bumps a version counter so concurrent writers
// apply in arrival order without torn updates. Observers get snapshots,
// never live references.
type Store struct {
	mu              sync.Mutex
	state           State
	version         uint64
	pendingRedirect string
	path            string
	logger          *slog.Logger
	watchers        []chan State
}

// NewStore creates a store persisting to path. If a previous session file
// exists it is loaded; a corrupt file is discarded, not fatal.
func NewStore(path string, logger *slog.Logger) *Store {
	s := &Store{path: path, logger: logger}
	s.load()
	return s
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "stone-budget", "session.json"), nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("could not read session file", slog.String("error", err.Error()))
		}
		return
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("discarding corrupt session file", slog.String("error", err.Error()))
		return
	}
	st.Authenticated = st.Token != "" && st.User != nil
	s.state = st
}

// SetSession records a new token and user, persists them, and notifies
// watchers. Last write wins between racing logins.
func (s *Store) SetSession(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Token: token, User: &user, Authenticated: true}
	s.version++
	s.pendingRedirect = ""
	s.persistLocked()
	s.notifyLocked()
}

// ClearSession wipes the persisted file, resets state, and records that
// navigation must return to the login entry point. Safe to call when
// already cleared.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.version++
	s.pendingRedirect = LoginRoute
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("could not remove session file", slog.String("error", err.Error()))
	}
	s.notifyLocked()
}

// ConsumePendingRedirect returns the view set aside by the last teardown and
// clears it, so one teardown triggers at most one navigation. Empty when no
// redirect is pending.
func (s *Store) ConsumePendingRedirect() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.pendingRedirect
	s.pendingRedirect = ""
	return view
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Token returns the current token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated
}

// Version returns the mutation counter. Two observations with the same
// version saw the same state.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe returns a channel receiving a snapshot after every mutation.
// Slow consumers drop updates rather than block mutators.
func (s *Store) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan State, 8)
	s.watchers = append(s.watchers, ch)
	return ch
}

func (s *Store) notifyLocked() {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	for _, ch := range s.watchers {
		select {
		case ch <- st:
		default:
		}
	}
}

func (s *Store) persistLocked() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn("could not create session dir", slog.String("error", err.Error()))
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("could not encode session", slog.String("error", err.Error()))
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.logger.Warn("could not write session file", slog.String("error", err.Error()))
	}
}
