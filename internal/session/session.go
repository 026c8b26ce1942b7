// Package session gates the client on a single locally stored identity.
// There is no backend authentication: any non-empty username and password
// are admitted.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hyperengineering/croppriceai/internal/store"
	"github.com/hyperengineering/croppriceai/internal/validation"
)

// IdentityKey is the storage key holding the logged-in username.
const IdentityKey = "user"

// IdentityStore is durable key-value storage for the identity.
type IdentityStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session holds the logged-in identity, if any. Safe for concurrent use.
type Session struct {
	store IdentityStore

	mu       sync.RWMutex
	identity string
}

// Open restores a session from st. A missing identity is a logged-out session.
func Open(ctx context.Context, st IdentityStore) (*Session, error) {
	s := &Session{store: st}
	id, err := st.Get(ctx, IdentityKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("restore session: %w", err)
	default:
		s.identity = id
	}
	return s, nil
}

// Login admits any non-empty username/password pair and stores the username.
// On failure the session is unchanged.
func (s *Session) Login(ctx context.Context, username, password string) error {
	var c validation.Collector
	c.Add(validation.ValidateRequired("username", username))
	c.Add(validation.ValidateRequired("password", password))
	if err := c.Err(); err != nil {
		return err
	}

	username = strings.TrimSpace(username)
	if err := s.store.Set(ctx, IdentityKey, username); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}

	s.mu.Lock()
	s.identity = username
	s.mu.Unlock()

	slog.Info("logged in", "component", "session", "user", username)
	return nil
}

// Logout clears the identity. Calling it when logged out is not an error.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, IdentityKey); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	s.mu.Lock()
	s.identity = ""
	s.mu.Unlock()
	return nil
}

// IsAuthenticated reports whether an identity is held.
func (s *Session) IsAuthenticated() bool {
	return s.Identity() != ""
}

// Identity returns the logged-in username, empty when logged out.
func (s *Session) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Register is a mock sign-up: it checks username and password are present
// and stores nothing. The caller should then send the user to Login.
func Register(username, email, password string) error {
	var c validation.Collector
	c.Add(validation.ValidateRequired("username", username))
	c.Add(validation.ValidateRequired("password", password))
	if email != "" && !strings.Contains(email, "@") {
		c.Add(&validation.ValidationError{Field: "email", Message: "must be an email address"})
	}
	return c.Err()
}

// MemoryStore is an in-memory IdentityStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
