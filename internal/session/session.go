// Package session holds the bearer credential obtained at login. The client
// core only ever reads it; login creates it and logout clears it.
package session

import "sync"

// Session is a concurrency-safe token holder.
type Session struct {
	mu    sync.RWMutex
	token string
}

// New returns a session carrying the given token.
func New(token string) *Session {
	return &Session{token: token}
}

// Token returns the current credential, empty when logged out.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a credential is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Clear drops the credential. Called by the logout flow, never by the core.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
