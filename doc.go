// Package webauth provides cookie session authentication for a web API.
//
// Users register with a name, email and password or sign in through an
// external OAuth provider.  A successful login binds an opaque session
// cookie to the user's id on the server; the session lives for 24 hours
// from login and is destroyed on logout.
//
// # Basic Usage
//
// Pick a UserStore and an scs session store, then build the App:
//
//	import (
//	    "github.com/alexedwards/scs/v2/memstore"
//	    "github.com/panyam/webauth"
//	    "github.com/panyam/webauth/stores"
//	)
//
//	users := stores.NewFSUserStore("/path/to/storage")
//	sessions := webauth.NewSessionManager(users, webauth.SessionConfig{Store: memstore.New()}, nil)
//	app, err := webauth.NewApp(webauth.AppConfig{
//	    Users:       users,
//	    Sessions:    sessions,
//	    FrontendURL: "http://localhost:3000",
//	})
//	http.ListenAndServe(":5000", app.Handler())
//
// # Routes
//
//	POST /api/auth/register         name, email, password
//	POST /api/auth/login            email, password
//	GET  /api/auth/logout           requires a session
//	GET  /api/auth/current-user
//	GET  /api/auth/{provider}       only with AppConfig.Provider
//	GET  /api/auth/{provider}/callback
//	GET  /api/profile               requires a session
//
// Request bodies may be JSON or urlencoded forms.  Errors are returned as
// {"message": "..."} with a 4xx or 5xx status.
//
// # Protecting Routes
//
// Gate rejects requests without a logged in user with 401.  Hosts can add
// their own routes to App.Router():
//
//	app.Router().Handle("/api/things", webauth.GateFunc(func(w http.ResponseWriter, r *http.Request) {
//	    user := webauth.CurrentUser(r)
//	    ...
//	}))
//
// # Stores
//
// Credential stores live under stores/: a JSON file store, MongoDB
// (stores/mongo, which also provides an scs session store), SQL through
// GORM (stores/gorm) and Cloud Datastore (stores/gae).  Every store must
// reject a second user with the same email with ErrDuplicateUser.
package webauth
