// Package session is the single source of truth for the client's
// authenticated state and the bearer credential used by the gateway.
// State is written through to a JSON file on every mutation so a restart
// restores the last known state without re-authenticating.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ventureops/eventadmin/internal/apperror"
)

const stateFile = "session.json"

// authenticatedMarker is the exact persisted value that counts as logged
// in; anything else reads as logged out.
const authenticatedMarker = "true"

// Authenticator performs the remote login operation. It is implemented by
// the gateway client and passed in by the caller, so the store itself owns
// no network dependency.
type Authenticator interface {
	// Login exchanges credentials for a fresh bearer token.
	Login(ctx context.Context, username, password string) (string, error)
}

// Store holds the authenticated flag and the bearer token.
type Store struct {
	mu            sync.Mutex
	path          string
	authenticated bool
	token         string
}

// persistedState is the on-disk shape of the session file.
type persistedState struct {
	IsAuthenticated string `json:"is_authenticated,omitempty"`
	Token           string `json:"token,omitempty"`
}

// Open reads the persisted session from dir. A missing file means logged
// out with no credential; a corrupt file is an error.
func Open(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, stateFile)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read session state: %w", err)
	}

	var st persistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse session state: %w", err)
	}
	s.authenticated = st.IsAuthenticated == authenticatedMarker
	s.token = st.Token
	return s, nil
}

// Login validates the inputs, delegates to the remote login operation and
// persists the fresh credential. Empty username or password short-circuits
// to failure without any network call. On remote rejection the stored
// state is left unchanged.
func (s *Store) Login(ctx context.Context, remote Authenticator, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, apperror.ValidationFailed("credentials", "invalid username or password")
	}

	token, err := remote.Login(ctx, username, password)
	if err != nil {
		return false, apperror.Authentication(fmt.Sprintf("login rejected: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.authenticated = true
	if err := s.save(); err != nil {
		return true, fmt.Errorf("persist session: %w", err)
	}
	return true, nil
}

// Logout clears the authenticated flag and erases the persisted marker.
// It always succeeds and performs no server-side call; the stored token is
// left in place, matching the flag-only logout of the admin UI.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	_ = s.save()
}

// IsAuthenticated reports whether the client may enter protected views.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Token returns the stored bearer credential. There is no fallback
// credential: absent means absent, and authenticated gateway calls must
// fail closed.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// save writes the current state through to disk. Callers hold s.mu.
func (s *Store) save() error {
	st := persistedState{Token: s.token}
	if s.authenticated {
		st.IsAuthenticated = authenticatedMarker
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
