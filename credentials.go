package webauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Credentials is what an Authenticator verifies.  The set of variants is closed:
// LocalCredentials for email/password and OAuthCallback for a provider redirect.
type Credentials interface {
	credentials()
}

// LocalCredentials is an email and password pair submitted to the login route
type LocalCredentials struct {
	Email    string
	Password string
}

// OAuthCallback carries the provider's redirect back to us (code, state and cookies)
type OAuthCallback struct {
	Request *http.Request
}

func (LocalCredentials) credentials() {}
func (OAuthCallback) credentials()    {}

// FailureReason says why an authentication attempt did not produce a user
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonNoSuchUser
	ReasonBadCredentials
	ReasonProviderError
	ReasonInternal
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoSuchUser:
		return "no such user"
	case ReasonBadCredentials:
		return "bad credentials"
	case ReasonProviderError:
		return "provider error"
	case ReasonInternal:
		return "internal error"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// AuthResult is either a verified user or a failure reason.  Err holds the
// underlying cause for logging.
type AuthResult struct {
	User   *User
	Reason FailureReason
	Err    error
}

func (r AuthResult) OK() bool { return r.User != nil && r.Reason == ReasonNone }

func authSuccess(user *User) AuthResult { return AuthResult{User: user} }

func authFailure(reason FailureReason, err error) AuthResult {
	return AuthResult{Reason: reason, Err: err}
}

// Authenticator verifies one kind of credentials
type Authenticator interface {
	// Kind names the strategy, eg "local" or "google"
	Kind() string
	Authenticate(ctx context.Context, creds Credentials) AuthResult
}

// parseBody reads the named fields from either a urlencoded form or a JSON object
func parseBody(r *http.Request, fields ...string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("error parsing form")
		}
		for _, f := range fields {
			out[f] = r.FormValue(f)
		}
		return out, nil
	}

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data == nil {
		return nil, fmt.Errorf("invalid post body")
	}
	for _, f := range fields {
		if v, ok := data[f].(string); ok {
			out[f] = v
		}
	}
	return out, nil
}

// missingAny is true if any of the named values is empty
func missingAny(values map[string]string, fields ...string) bool {
	for _, f := range fields {
		if values[f] == "" {
			return true
		}
	}
	return false
}
