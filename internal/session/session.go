// Package session holds the authenticated identity of the terminal client.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tgienger/smartplanner/internal/config"
)

const fileName = "session.json"

// Session is either anonymous or carries a repository token. The zero value
// is anonymous.
type Session struct {
	token    string
	username string
}

// Anonymous returns a session with no identity.
func Anonymous() Session { return Session{} }

// New returns an authenticated session.
func New(token, username string) Session {
	return Session{token: token, username: username}
}

// Token returns the repository token and whether there is one.
func (s Session) Token() (string, bool) {
	return s.token, s.token != ""
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool { return s.token != "" }

// Username is the name the session was opened with, if known.
func (s Session) Username() string { return s.username }

type stored struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Store persists a session to a single file readable only by the user.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store in the application's config directory.
func DefaultStore() (*Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, fileName)), nil
}

// Path is the file backing the store.
func (s *Store) Path() string { return s.path }

// Load returns the saved session. A missing file is an anonymous session.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Anonymous(), nil
	}
	if err != nil {
		return Anonymous(), err
	}

	var v stored
	if err := json.Unmarshal(data, &v); err != nil {
		return Anonymous(), fmt.Errorf("failed to decode session: %w", err)
	}
	return New(v.Token, v.Username), nil
}

// Save writes sess, replacing any previous session.
func (s *Store) Save(sess Session) error {
	if !sess.Authenticated() {
		return s.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open session file for writing: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(stored{Token: sess.token, Username: sess.username})
}

// Clear removes the saved session. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
