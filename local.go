package webauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// LocalAuthenticator checks an email and password against the credential store
type LocalAuthenticator struct {
	Users UserStore
}

func NewLocalAuthenticator(users UserStore) *LocalAuthenticator {
	return &LocalAuthenticator{Users: users}
}

func (a *LocalAuthenticator) Kind() string { return ProviderLocal }

func (a *LocalAuthenticator) Authenticate(ctx context.Context, creds Credentials) AuthResult {
	local, ok := creds.(LocalCredentials)
	if !ok {
		return authFailure(ReasonInternal, fmt.Errorf("local authenticator cannot verify %T", creds))
	}

	user, err := a.Users.GetUserByEmail(ctx, local.Email)
	if errors.Is(err, ErrUserNotFound) {
		return authFailure(ReasonNoSuchUser, err)
	} else if err != nil {
		return authFailure(ReasonInternal, fmt.Errorf("failed to look up user: %w", err))
	}

	if !CheckPassword(user.PasswordHash, local.Password) {
		return authFailure(ReasonBadCredentials, errors.New("password mismatch"))
	}
	return authSuccess(user)
}

// HandleLogin verifies the posted email/password and establishes a session.
// Unknown email and wrong password produce the same response.
func (a *App) HandleLogin(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(r, "email", "password")
	if err != nil || missingAny(values, "email", "password") {
		writeError(w, NewValidationError(msgMissingFields))
		return
	}

	result := a.Local.Authenticate(r.Context(), LocalCredentials{Email: values["email"], Password: values["password"]})
	if !result.OK() {
		switch result.Reason {
		case ReasonNoSuchUser, ReasonBadCredentials:
			a.Logger.Info("login rejected", "reason", result.Reason.String())
			writeError(w, NewInvalidCredentialsError(result.Err))
		default:
			a.fail(w, NewAuthenticationError(result.Err))
		}
		return
	}

	if err := a.Sessions.Establish(r.Context(), result.User); err != nil {
		a.fail(w, NewSessionError(msgSessionAfterLogin, err))
		return
	}

	a.Logger.Info("user logged in", "user_id", result.User.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    result.User.PublicWithRole(),
	})
}

// fail logs server side failures and writes the error response
func (a *App) fail(w http.ResponseWriter, err *AuthError) {
	if err.Status >= http.StatusInternalServerError {
		a.Logger.Error("request failed", "code", err.Code, "error", err.Cause)
	} else {
		a.Logger.Debug("request rejected", "code", err.Code)
	}
	writeError(w, err)
}

var _ Authenticator = (*LocalAuthenticator)(nil)
