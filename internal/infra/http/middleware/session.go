package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

const (
	sessionCookie = "renewal_session"
	sessionTTL    = 8 * time.Hour
)

type contextKey string

const sessionKey contextKey = "session"

// SessionStore keeps authenticated sessions in memory, keyed by an opaque
// cookie token. Sessions expire after eight hours.
type SessionStore struct {
	secure bool

	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func NewSessionStore(secure bool) *SessionStore {
	return &SessionStore{
		secure:   secure,
		sessions: make(map[string]*entity.Session),
	}
}

// Establish creates a session for the identity and sets the cookie.
func (s *SessionStore) Establish(w http.ResponseWriter, user, team string) *entity.Session {
	now := time.Now()
	session := &entity.Session{
		Token:     uuid.New().String(),
		User:      user,
		Team:      team,
		LoginTime: now,
		ExpiresAt: now.Add(sessionTTL),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return session
}

// Get resolves the request's session, dropping it when expired.
func (s *SessionStore) Get(r *http.Request) *entity.Session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[cookie.Value]
	if !ok {
		return nil
	}
	if session.Expired(time.Now()) {
		delete(s.sessions, cookie.Value)
		return nil
	}
	return session
}

// Destroy removes the session and clears the cookie.
func (s *SessionStore) Destroy(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// RequireTeam gates a route subtree to one team's authenticated members.
func (s *SessionStore) RequireTeam(team, teamName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := s.Get(r)
			if session == nil {
				writeJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if session.Team != team {
				writeJSONError(w, http.StatusForbidden, teamName+" team access required")
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session stored by RequireTeam, or nil.
func SessionFrom(ctx context.Context) *entity.Session {
	session, _ := ctx.Value(sessionKey).(*entity.Session)
	return session
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
