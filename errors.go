package webauth

import (
	"encoding/json"
	"net/http"
)

// Error codes returned by the HTTP surface
const (
	ErrCodeValidation     = "validation_error"
	ErrCodeDuplicateUser  = "duplicate_user"
	ErrCodeInvalidCreds   = "invalid_credentials"
	ErrCodeSession        = "session_error"
	ErrCodeAuthentication = "authentication_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeServer         = "server_error"
)

// Client visible messages
const (
	msgNotAuthorized        = "Not authorized"
	msgServerError          = "Server error"
	msgInvalidCredentials   = "Invalid credentials"
	msgMissingFields        = "Please enter all fields"
	msgUserExists           = "User already exists"
	msgAuthenticationFailed = "Authentication error"
	msgSessionAfterRegister = "Error logging in after registration"
	msgSessionAfterLogin    = "Error logging in"
	msgSessionDestroyFailed = "Error logging out"
)

// AuthError is a failure that maps to exactly one HTTP response.
// Message is what the client sees; Cause is only ever logged.
type AuthError struct {
	Code    string
	Message string
	Status  int
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return e.Code + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Cause }

func NewValidationError(message string) *AuthError {
	return &AuthError{Code: ErrCodeValidation, Message: message, Status: http.StatusBadRequest}
}

func NewDuplicateUserError(cause error) *AuthError {
	return &AuthError{Code: ErrCodeDuplicateUser, Message: msgUserExists, Status: http.StatusBadRequest, Cause: cause}
}

func NewInvalidCredentialsError(cause error) *AuthError {
	return &AuthError{Code: ErrCodeInvalidCreds, Message: msgInvalidCredentials, Status: http.StatusBadRequest, Cause: cause}
}

func NewSessionError(message string, cause error) *AuthError {
	return &AuthError{Code: ErrCodeSession, Message: message, Status: http.StatusInternalServerError, Cause: cause}
}

func NewAuthenticationError(cause error) *AuthError {
	return &AuthError{Code: ErrCodeAuthentication, Message: msgAuthenticationFailed, Status: http.StatusInternalServerError, Cause: cause}
}

func NewUnauthorizedError() *AuthError {
	return &AuthError{Code: ErrCodeUnauthorized, Message: msgNotAuthorized, Status: http.StatusUnauthorized}
}

func NewServerError(cause error) *AuthError {
	return &AuthError{Code: ErrCodeServer, Message: msgServerError, Status: http.StatusInternalServerError, Cause: cause}
}

// writeJSON writes body as JSON with the given status
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError renders an AuthError as {"message": ...}
func writeError(w http.ResponseWriter, err *AuthError) {
	writeJSON(w, err.Status, map[string]any{"message": err.Message})
}
