// Package auth provides the credentials attached to outgoing API requests.
package auth

import (
	"context"
	"log/slog"
)

// DefaultSessionKey is the session entry holding the user's token.
const DefaultSessionKey = "MFETOKEN"

// Provider supplies a bearer token, if one is available.
type Provider interface {
	Token(ctx context.Context) (string, bool)
}

// Static always returns the same token. An empty token means none.
type Static string

// Token implements Provider.
func (s Static) Token(ctx context.Context) (string, bool) {
	return string(s), s != ""
}

// None never returns a token.
var None Provider = Static("")

// SessionReader reads session values, e.g. *redis.Client.
type SessionReader interface {
	GetSession(ctx context.Context, key string) (string, bool, error)
}

// SessionStore reads the token from the shared session store.
type SessionStore struct {
	sessions SessionReader
	key      string
	log      *slog.Logger
}

// NewSessionStore creates a Provider backed by sessions.
func NewSessionStore(sessions SessionReader, key string, logger *slog.Logger) *SessionStore {
	if key == "" {
		key = DefaultSessionKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{sessions: sessions, key: key, log: logger}
}

// Token implements Provider. Store errors are logged and treated as no token.
func (s *SessionStore) Token(ctx context.Context) (string, bool) {
	token, found, err := s.sessions.GetSession(ctx, s.key)
	if err != nil {
		s.log.Warn("Failed to read session token", "key", s.key, "error", err)
		return "", false
	}
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// Chain returns the token of the first provider that has one.
type Chain []Provider

// Token implements Provider.
func (c Chain) Token(ctx context.Context) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if token, ok := p.Token(ctx); ok {
			return token, true
		}
	}
	return "", false
}

// DevToken returns the configured development token only in the dev
// environment.
func DevToken(env, token string) Provider {
	if env != "dev" || token == "" {
		return None
	}
	return Static(token)
}
