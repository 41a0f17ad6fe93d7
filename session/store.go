// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package session keeps the credentials of the signed-in user and hands them
// out as bearer authorization values.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/golang-jwt/jwt"
	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNoSession      = errors.New("no session stored")
	ErrNilAuthPayload = errors.New("auth response has no access token")
)

// expirySkew makes a token count as expired slightly before the server would
// reject it.
const expirySkew = 10 * time.Second

// Tokens is the persisted state of a session.
type Tokens struct {
	AccessToken  string      `yaml:"access_token"`
	RefreshToken string      `yaml:"refresh_token"`
	ExpiresAt    time.Time   `yaml:"expires_at,omitempty"`
	User         *model.User `yaml:"user,omitempty"`
}

// Backend persists Tokens between process restarts.
type Backend interface {
	// Load returns ErrNoSession when nothing has been saved.
	Load() (Tokens, error)
	Save(Tokens) error
	Clear() error
}

// Store is safe for concurrent use.
type Store struct {
	lock    sync.RWMutex
	state   Tokens
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

var _ acquire.Acquirer = (*Store)(nil)

// NewStore creates a Store and restores any session the backend holds.
// A nil backend keeps the session in memory only.
func NewStore(backend Backend, logger *zap.Logger) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	if logger == nil {
		logger = sallust.Default()
	}

	s := &Store{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}

	state, err := backend.Load()
	switch {
	case errors.Is(err, ErrNoSession):
	case err != nil:
		return nil, fmt.Errorf("failed to restore session: %w", err)
	default:
		s.state = state
		logger.Debug("restored session", zap.Bool("hasRefreshToken", state.RefreshToken != ""))
	}

	return s, nil
}

// Acquire returns the Authorization header value for outgoing requests, or
// the empty string when nobody is signed in.
func (s *Store) Acquire() (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.state.AccessToken == "" {
		return "", nil
	}
	return "Bearer " + s.state.AccessToken, nil
}

// Set stores the credentials returned by signup, login or refresh. A refresh
// response without a refresh token keeps the current one.
func (s *Store) Set(resp model.AuthResponse) error {
	if resp.AccessToken == "" {
		return ErrNilAuthPayload
	}

	s.lock.Lock()
	next := Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.expiry(resp.AccessToken, resp.ExpiresIn),
		User:         s.state.User,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = s.state.RefreshToken
	}
	if resp.User.ID != "" {
		user := resp.User
		next.User = &user
	}
	s.state = next
	s.lock.Unlock()

	return s.persist(next)
}

// SetUser replaces the cached profile of the signed-in user.
func (s *Store) SetUser(user model.User) error {
	s.lock.Lock()
	s.state.User = &user
	next := s.state
	s.lock.Unlock()

	return s.persist(next)
}

// Clear forgets every credential.
func (s *Store) Clear() error {
	s.lock.Lock()
	s.state = Tokens{}
	s.lock.Unlock()

	if err := s.backend.Clear(); err != nil {
		s.logger.Error("failed to clear persisted session", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Tokens() Tokens {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

func (s *Store) AccessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state.AccessToken
}

func (s *Store) RefreshToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state.RefreshToken
}

// User returns the signed-in user, if known.
func (s *Store) User() (model.User, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.state.User == nil {
		return model.User{}, false
	}
	return *s.state.User, true
}

// Authenticated reports whether an access token is held.
func (s *Store) Authenticated() bool {
	return s.AccessToken() != ""
}

// Expired reports whether the access token is known to be past its expiry.
// Tokens without a known expiry never count as expired.
func (s *Store) Expired() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.state.AccessToken == "" || s.state.ExpiresAt.IsZero() {
		return false
	}
	return !s.now().Before(s.state.ExpiresAt.Add(-expirySkew))
}

// expiry prefers the exp claim of a JWT access token and falls back to the
// advertised lifetime.
func (s *Store) expiry(token string, expiresIn int64) time.Time {
	var claims jwt.StandardClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err == nil && claims.ExpiresAt > 0 {
		return time.Unix(claims.ExpiresAt, 0)
	}
	if expiresIn > 0 {
		return s.now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}

func (s *Store) persist(t Tokens) error {
	if err := s.backend.Save(t); err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
		return err
	}
	return nil
}
