// Package client is the Go consumer of the empresas API: a persisted
// session, an authenticating transport, a route guard, and typed calls
// for every endpoint.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// sessionData is the on-disk session shape. The three keys travel
// together: a session either holds all of them or none.
type sessionData struct {
	Token      string    `json:"jwt_token"`
	Email      string    `json:"user_email"`
	Expiration time.Time `json:"token_expiration"`
}

// SessionStore persists the authenticated session to a single JSON file.
// Writes go through a temp file and rename so a crash never leaves a
// half-written session behind.
type SessionStore struct {
	mu   sync.Mutex
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Save stores the token, email and expiration as one unit.
func (s *SessionStore) Save(token, email string, expiration time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sessionData{
		Token:      token,
		Email:      email,
		Expiration: expiration,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Clear removes the whole session. Clearing an absent session is a no-op.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) load() sessionData {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return sessionData{}
	}
	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return sessionData{}
	}
	return data
}

// Token returns the stored token, or "" when no session is held.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Token
}

// Email returns the stored account email, or "" when no session is held.
func (s *SessionStore) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Email
}

// Expiration returns the stored expiration instant; zero when absent.
func (s *SessionStore) Expiration() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Expiration
}

// IsAuthenticated reports whether a token is held and its expiration is
// strictly in the future. A token expiring exactly now counts as expired.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	return data.Token != "" && data.Expiration.After(time.Now())
}
