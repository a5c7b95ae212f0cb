// Package auth holds the panel's session-scoped credential state: the
// signed-in dealer user and their bearer token. The cart engine and the
// API client read credentials from here; a session without a token is
// the designed guest mode, not an error.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// User is the signed-in dealer account as reported by the backend.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	// AccountNo is the dealer's current-account number ("fkn"), used by
	// the statement endpoints.
	AccountNo string `json:"fkn,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Session is a concurrency-safe in-memory credential holder.
type Session struct {
	mu    sync.RWMutex
	user  *User
	token string
}

// NewSession returns an empty (guest) session.
func NewSession() *Session {
	return &Session{}
}

// SetCredentials installs the signed-in user and raw token.
func (s *Session) SetCredentials(user User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	s.token = strings.TrimSpace(token)
}

// Clear drops the credentials, returning the session to guest mode.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// Token returns the bare bearer credential, or "" for a guest session.
// Tokens stored with a "Bearer " prefix are normalized, matching how
// the backend hands them out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token := s.token
	if strings.HasPrefix(token, bearerPrefix) {
		token = token[len(bearerPrefix):]
	}
	return strings.TrimSpace(token)
}

// Username returns the signed-in username, or "" for a guest session.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

// User returns a copy of the signed-in user.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether both a user and a token are present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != "" && s.Username() != ""
}

// TokenExpiresAt reads the expiry claim from the session token without
// verifying its signature. Verification belongs to the backend; the
// client only needs the expiry to prompt a fresh sign-in early.
func (s *Session) TokenExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenExpired reports whether the session token carries an expiry in
// the past. Tokens without a readable expiry are treated as live.
func (s *Session) TokenExpired(now time.Time) bool {
	expiresAt, ok := s.TokenExpiresAt()
	if !ok {
		return false
	}
	return now.After(expiresAt)
}
