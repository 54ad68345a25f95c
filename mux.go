package webauth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// AppConfig is everything NewApp needs.  Users and Sessions are required.
type AppConfig struct {
	Users    UserStore
	Sessions *SessionManager
	Logger   *slog.Logger

	// Provider enables the OAuth routes.  Leave nil when no provider
	// credentials are configured and the routes will not exist.
	Provider IdentityProvider

	// FrontendURL is where a successful OAuth login lands.  Defaults to "/"
	FrontendURL string

	// FailureRedirectURL is where a failed OAuth login lands.  Defaults to "/login"
	FailureRedirectURL string
}

// App holds the stores and authenticators shared by all routes
type App struct {
	Users              UserStore
	Sessions           *SessionManager
	Local              *LocalAuthenticator
	OAuth              *OAuthAuthenticator
	Logger             *slog.Logger
	FrontendURL        string
	FailureRedirectURL string
	router             *mux.Router
}

func NewApp(config AppConfig) (*App, error) {
	if config.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if config.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	a := &App{
		Users:              config.Users,
		Sessions:           config.Sessions,
		Local:              NewLocalAuthenticator(config.Users),
		Logger:             config.Logger,
		FrontendURL:        config.FrontendURL,
		FailureRedirectURL: config.FailureRedirectURL,
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	if a.FrontendURL == "" {
		a.FrontendURL = "/"
	}
	if a.FailureRedirectURL == "" {
		a.FailureRedirectURL = "/login"
	}
	if config.Provider != nil {
		a.OAuth = NewOAuthAuthenticator(config.Provider, config.Users)
	}
	a.setupRoutes()
	return a, nil
}

// Handler is the full HTTP surface with session loading applied
func (a *App) Handler() http.Handler {
	return a.Sessions.Handler(a.router)
}

// Router exposes the route table so hosts can add their own gated routes
func (a *App) Router() *mux.Router {
	return a.router
}

func (a *App) setupRoutes() {
	r := mux.NewRouter()
	r.HandleFunc("/", a.HandleRoot).Methods(http.MethodGet)
	r.Handle("/api/profile", GateFunc(a.HandleProfile)).Methods(http.MethodGet)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", a.HandleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/login", a.HandleLogin).Methods(http.MethodPost)
	auth.Handle("/logout", GateFunc(a.HandleLogout)).Methods(http.MethodGet)
	auth.HandleFunc("/current-user", a.HandleCurrentUser).Methods(http.MethodGet)

	if a.OAuth != nil {
		name := a.OAuth.Kind()
		auth.HandleFunc("/"+name, a.HandleOAuthBegin).Methods(http.MethodGet)
		auth.HandleFunc("/"+name+"/callback", a.HandleOAuthCallback).Methods(http.MethodGet)
		a.Logger.Info("oauth login enabled", "provider", name)
	}
	a.router = r
}

func (a *App) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Authentication API - Server Running")
}

// HandleLogout tears down the current session
func (a *App) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	if err := a.Sessions.Destroy(r.Context()); err != nil {
		a.fail(w, NewSessionError(msgSessionDestroyFailed, err))
		return
	}
	a.Logger.Info("user logged out", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
}

// HandleCurrentUser reports whether the request is authenticated
func (a *App) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"isAuthenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"isAuthenticated": true,
		"user":            user.PublicWithRole(),
	})
}

// HandleProfile is the sample protected resource
func (a *App) HandleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "You have access to this protected resource",
		"user":    CurrentUser(r).Public(),
	})
}
