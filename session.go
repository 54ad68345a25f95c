package webauth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

// SessionTimeout is how long a session lives after it is established.  There
// is no idle timeout so the expiry does not slide with activity.
const SessionTimeout = 24 * time.Hour

const sessionUserKey = "userID"

// SessionConfig configures NewSessionManager
type SessionConfig struct {
	// Store persists sessions server side.  Defaults to the scs in-memory store.
	Store scs.Store

	// CookieName defaults to "session_id"
	CookieName string

	// Secure marks the cookie Secure (set when served over https)
	Secure bool

	// Lifetime defaults to SessionTimeout
	Lifetime time.Duration
}

// SessionManager binds an opaque cookie token to a user id stored server side
type SessionManager struct {
	Session *scs.SessionManager
	Users   UserStore
	Logger  *slog.Logger
}

func NewSessionManager(users UserStore, config SessionConfig, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	session := scs.New()
	if config.Store != nil {
		session.Store = config.Store
	}
	session.Lifetime = config.Lifetime
	if session.Lifetime <= 0 {
		session.Lifetime = SessionTimeout
	}
	session.IdleTimeout = 0
	session.Cookie.Name = config.CookieName
	if session.Cookie.Name == "" {
		session.Cookie.Name = "session_id"
	}
	session.Cookie.HttpOnly = true
	session.Cookie.Path = "/"
	session.Cookie.Persist = true
	session.Cookie.SameSite = http.SameSiteLaxMode
	session.Cookie.Secure = config.Secure
	session.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("session store failure", "error", err)
		state, _ := r.Context().Value(sessionStateKey{}).(*sessionState)
		switch {
		case state == nil:
		case state.reported:
			// the handler is already writing its own SessionError
			return
		case state.committed:
			// Establish already saved this session, only the repeat save failed
			session.WriteSessionCookie(r.Context(), w, state.token, state.expiry)
			return
		}
		writeError(w, NewServerError(err))
	}
	return &SessionManager{Session: session, Users: users, Logger: logger}
}

// Establish stores the user's id in a fresh session and writes it to the
// store before returning, so a store failure is reported here instead of
// after a logged in response has been sent.
func (s *SessionManager) Establish(ctx context.Context, user *User) error {
	if err := s.Session.RenewToken(ctx); err != nil {
		markSessionFailure(ctx)
		return fmt.Errorf("failed to renew session token: %w", err)
	}
	s.Session.Put(ctx, sessionUserKey, user.ID)
	token, expiry, err := s.Session.Commit(ctx)
	if err != nil {
		markSessionFailure(ctx)
		return fmt.Errorf("failed to save session: %w", err)
	}
	if state, _ := ctx.Value(sessionStateKey{}).(*sessionState); state != nil {
		state.committed = true
		state.token = token
		state.expiry = expiry
	}
	return nil
}

// Destroy removes the session server side and expires the cookie
func (s *SessionManager) Destroy(ctx context.Context) error {
	if err := s.Session.Destroy(ctx); err != nil {
		markSessionFailure(ctx)
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// Handler loads the session for each request, resolves the logged in user and
// saves the session back after next runs
func (s *SessionManager) Handler(next http.Handler) http.Handler {
	inner := s.Session.LoadAndSave(s.LoadUser(next))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), sessionStateKey{}, &sessionState{})
		inner.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionState tracks what the handler already did with the session store so
// that the save scs repeats on the way out never writes a second response.
// reported is set once a handler has answered with its own SessionError and
// committed once Establish has saved the session under token.
type sessionState struct {
	reported  bool
	committed bool
	token     string
	expiry    time.Time
}

type sessionStateKey struct{}

func markSessionFailure(ctx context.Context) {
	if state, _ := ctx.Value(sessionStateKey{}).(*sessionState); state != nil {
		state.reported = true
	}
}
