package webauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ExternalProfile is the identity an OAuth provider vouches for
type ExternalProfile struct {
	Provider      string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityProvider runs the redirect handshake with an external provider
type IdentityProvider interface {
	// Name is the provider name used in routes and on provisioned users
	Name() string

	// BeginAuth redirects the browser to the provider
	BeginAuth(w http.ResponseWriter, r *http.Request)

	// CompleteAuth checks the callback request and returns the verified profile
	CompleteAuth(ctx context.Context, r *http.Request) (*ExternalProfile, error)
}

// OAuthAuthenticator turns a provider callback into a local user, creating
// one the first time a verified email is seen
type OAuthAuthenticator struct {
	Provider IdentityProvider
	Users    UserStore
}

func NewOAuthAuthenticator(provider IdentityProvider, users UserStore) *OAuthAuthenticator {
	return &OAuthAuthenticator{Provider: provider, Users: users}
}

func (a *OAuthAuthenticator) Kind() string { return a.Provider.Name() }

func (a *OAuthAuthenticator) Authenticate(ctx context.Context, creds Credentials) AuthResult {
	callback, ok := creds.(OAuthCallback)
	if !ok || callback.Request == nil {
		return authFailure(ReasonInternal, fmt.Errorf("%s authenticator cannot verify %T", a.Kind(), creds))
	}

	profile, err := a.Provider.CompleteAuth(ctx, callback.Request)
	if err != nil {
		return authFailure(ReasonProviderError, err)
	}
	if profile.Email == "" || !profile.EmailVerified {
		return authFailure(ReasonProviderError, fmt.Errorf("%s did not return a verified email", a.Kind()))
	}

	user, err := a.ensureUser(ctx, profile)
	if err != nil {
		return authFailure(ReasonInternal, err)
	}
	return authSuccess(user)
}

// ensureUser finds the user with the profile's email or provisions one
func (a *OAuthAuthenticator) ensureUser(ctx context.Context, profile *ExternalProfile) (*User, error) {
	user, err := a.Users.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	name := profile.Name
	if name == "" {
		name, _, _ = strings.Cut(profile.Email, "@")
	}
	user, err = a.Users.CreateUser(ctx, &User{
		Name:     name,
		Email:    profile.Email,
		Role:     RoleUser,
		Provider: a.Kind(),
	})
	if errors.Is(err, ErrDuplicateUser) {
		// lost a race with another first login for the same email
		return a.Users.GetUserByEmail(ctx, profile.Email)
	} else if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return user, nil
}

// HandleOAuthBegin sends the browser to the configured provider
func (a *App) HandleOAuthBegin(w http.ResponseWriter, r *http.Request) {
	a.OAuth.Provider.BeginAuth(w, r)
}

// HandleOAuthCallback logs in the user vouched for by the provider and
// redirects to the frontend.  Failures redirect to the failure URL rather
// than returning JSON.
func (a *App) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	result := a.OAuth.Authenticate(r.Context(), OAuthCallback{Request: r})
	if !result.OK() {
		a.Logger.Warn("oauth login failed", "provider", a.OAuth.Kind(), "reason", result.Reason.String(), "error", result.Err)
		http.Redirect(w, r, a.FailureRedirectURL, http.StatusFound)
		return
	}

	if err := a.Sessions.Establish(r.Context(), result.User); err != nil {
		a.Logger.Error("failed to establish oauth session", "error", err)
		http.Redirect(w, r, a.FailureRedirectURL, http.StatusFound)
		return
	}

	a.Logger.Info("user logged in", "user_id", result.User.ID, "provider", a.OAuth.Kind())
	http.Redirect(w, r, a.FrontendURL, http.StatusFound)
}

var _ Authenticator = (*OAuthAuthenticator)(nil)
