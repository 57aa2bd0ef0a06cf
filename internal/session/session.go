// Package session holds the locally persisted login state: a bearer token
// and the cached user record returned at login.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Roles known to the backend
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the cached user record stored next to the token
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session reads and writes the login state through a Store.
// The token is never validated locally; the backend decides on the next call.
type Session struct {
	store Store
}

// New wraps a store
func New(store Store) *Session {
	return &Session{store: store}
}

// Store returns the underlying store
func (s *Session) Store() Store {
	return s.store
}

// Token returns the stored token, or "" if there is none or it cannot be read.
func (s *Session) Token() string {
	token, err := s.store.Get(KeyToken)
	if err != nil {
		return ""
	}
	return token
}

// HasToken reports whether a non-empty token is stored
func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// User returns the cached user. A missing record yields ErrNotFound;
// an unparsable one yields a decode error.
func (s *Session) User() (*User, error) {
	raw, err := s.store.Get(KeyUser)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to parse cached user: %w", err)
	}
	return &user, nil
}

// Save persists the token and, when non-nil, the user record.
func (s *Session) Save(token string, user *User) error {
	if err := s.store.Set(KeyToken, token); err != nil {
		return err
	}

	if user == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return s.store.Set(KeyUser, string(data))
}

// SaveRawUser stores an already-serialized user record as-is.
func (s *Session) SaveRawUser(raw []byte) error {
	return s.store.Set(KeyUser, string(raw))
}

// ClearToken removes the token and leaves the cached user in place.
// This is what happens on an HTTP 401.
func (s *Session) ClearToken() error {
	return s.store.Delete(KeyToken)
}

// Clear removes both token and user
func (s *Session) Clear() error {
	return errors.Join(
		s.store.Delete(KeyToken),
		s.store.Delete(KeyUser),
	)
}
