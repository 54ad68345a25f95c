package oauth2

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateCookieName holds the nonce that the signed state must carry
const StateCookieName = "oauthstate"

// StateTimeout bounds how long a user may take at the provider
const StateTimeout = 10 * time.Minute

// StateSigner issues and checks the state parameter sent through the provider.
// The state is an HS256 token whose nonce must match the oauthstate cookie
// set on the browser that started the flow.
type StateSigner struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

func NewStateSigner(secret string, issuer string) *StateSigner {
	return &StateSigner{Secret: []byte(secret), Issuer: issuer, Now: time.Now}
}

// Issue sets the nonce cookie and returns the signed state for the auth URL
func (s *StateSigner) Issue(w http.ResponseWriter) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := base64.RawURLEncoding.EncodeToString(b)
	now := s.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   s.Issuer,
		"nonce": nonce,
		"iat":   now.Unix(),
		"exp":   now.Add(StateTimeout).Unix(),
	})
	state, err := token.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    nonce,
		Path:     "/",
		MaxAge:   int(StateTimeout / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// Verify checks the state returned by the provider against the nonce cookie
func (s *StateSigner) Verify(r *http.Request, state string) error {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" {
		return fmt.Errorf("oauth state cookie missing")
	}
	if state == "" {
		return fmt.Errorf("oauth state missing")
	}

	token, err := jwt.Parse(state, func(token *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		return fmt.Errorf("invalid oauth state: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("claims is not a map")
	}
	if nonce, _ := claims["nonce"].(string); nonce != cookie.Value {
		return fmt.Errorf("oauth state does not match cookie")
	}
	return nil
}
