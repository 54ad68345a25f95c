// Package oauth2 provides the Google identity provider used by webauth's OAuth
// routes.  It performs the authorization code flow with golang.org/x/oauth2
// and reads the profile through the Google userinfo API.
package oauth2

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	wa "github.com/panyam/webauth"
)

// GoogleScopes are the scopes requested from Google: profile and email
var GoogleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// GoogleOAuth2 implements webauth.IdentityProvider for Google accounts
type GoogleOAuth2 struct {
	Config oauth2.Config
	State  *StateSigner
	Logger *slog.Logger

	// UserInfoEndpoint overrides the Google API base URL (used in tests)
	UserInfoEndpoint string
}

// NewGoogleOAuth2 creates the provider.  stateSecret signs the state parameter.
func NewGoogleOAuth2(clientId, clientSecret, callbackUrl, stateSecret string, logger *slog.Logger) *GoogleOAuth2 {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleOAuth2{
		Config: oauth2.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			RedirectURL:  callbackUrl,
			Scopes:       GoogleScopes,
			Endpoint:     google.Endpoint,
		},
		State:  NewStateSigner(stateSecret, "webauth-google"),
		Logger: logger,
	}
}

func (g *GoogleOAuth2) Name() string { return "google" }

// BeginAuth sets the state cookie and redirects to Google's consent page
func (g *GoogleOAuth2) BeginAuth(w http.ResponseWriter, r *http.Request) {
	state, err := g.State.Issue(w)
	if err != nil {
		g.Logger.Error("failed to issue oauth state", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, g.Config.AuthCodeURL(state), http.StatusFound)
}

// CompleteAuth validates the state, exchanges the code and fetches the profile
func (g *GoogleOAuth2) CompleteAuth(ctx context.Context, r *http.Request) (*wa.ExternalProfile, error) {
	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		return nil, fmt.Errorf("google returned error: %s", errParam)
	}
	if err := g.State.Verify(r, query.Get("state")); err != nil {
		return nil, err
	}

	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("authorization code missing")
	}
	token, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return g.fetchProfile(ctx, token)
}

func (g *GoogleOAuth2) fetchProfile(ctx context.Context, token *oauth2.Token) (*wa.ExternalProfile, error) {
	opts := []option.ClientOption{option.WithHTTPClient(g.Config.Client(ctx, token))}
	if g.UserInfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.UserInfoEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}

	profile := &wa.ExternalProfile{
		Provider: g.Name(),
		Email:    info.Email,
		Name:     info.Name,
	}
	if info.VerifiedEmail != nil {
		profile.EmailVerified = *info.VerifiedEmail
	}
	return profile, nil
}

var _ wa.IdentityProvider = (*GoogleOAuth2)(nil)
