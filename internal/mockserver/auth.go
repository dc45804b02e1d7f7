package mockserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
)

// tokenSet tracks the bearer tokens issued by login. Tokens live for the
// process lifetime; this is a dev server, not an identity provider.
type tokenSet struct {
	mu     sync.RWMutex
	tokens map[string]string // token -> user id
}

func newTokenSet() *tokenSet {
	return &tokenSet{tokens: map[string]string{}}
}

func (t *tokenSet) issue(userID string) string {
	tok := newID()
	t.mu.Lock()
	t.tokens[tok] = userID
	t.mu.Unlock()
	return tok
}

func (t *tokenSet) valid(tok string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.tokens[tok]
	return ok
}

// authMiddleware rejects requests without a known bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tok, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !s.tokens.valid(tok) {
			s.writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	u, err := s.storage.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, ErrNotFound) || (err == nil && u.Password != req.Password) {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.internalError(w, "look up user", err)
		return
	}
	if u.Role != "admin" {
		s.writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{Token: s.tokens.issue(u.ID)})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}

	u := User{ID: newID(), Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}
	if err := s.storage.CreateUser(r.Context(), u); err != nil {
		s.writeError(w, http.StatusConflict, "email already registered")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"_id": u.ID})
}
