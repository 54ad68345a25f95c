package webauth

import (
	"context"
	"errors"
	"net/http"
)

type currentUserKey struct{}

// CurrentUser returns the user attached to the request by LoadUser, or nil
// if the request is anonymous
func CurrentUser(r *http.Request) *User {
	user, _ := r.Context().Value(currentUserKey{}).(*User)
	return user
}

// WithUser returns a copy of r carrying user as the logged in user
func WithUser(r *http.Request, user *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey{}, user))
}

/**
 * Resolves the user id stored in the session to a user record and makes it
 * available to downstream handlers via CurrentUser.
 *
 * This does not reject anonymous requests.  A session pointing at a user that
 * no longer exists is treated as anonymous.  Wrap handlers with Gate to
 * require a user.
 */
func (s *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId := s.Session.GetString(r.Context(), sessionUserKey)
		if userId == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.Users.GetUserById(r.Context(), userId)
		if errors.Is(err, ErrUserNotFound) {
			s.Logger.Warn("session refers to missing user", "user_id", userId)
			next.ServeHTTP(w, r)
			return
		} else if err != nil {
			s.Logger.Error("failed to load session user", "user_id", userId, "error", err)
			writeError(w, NewServerError(err))
			return
		}
		next.ServeHTTP(w, WithUser(r, user))
	})
}

// Gate lets a request through only if it carries a live session for an
// existing user.  Any authenticated user passes; there are no role checks.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			writeError(w, NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GateFunc is Gate for a HandlerFunc
func GateFunc(next http.HandlerFunc) http.Handler {
	return Gate(next)
}
