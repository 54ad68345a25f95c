package webauth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	wa "github.com/panyam/webauth"
	"github.com/panyam/webauth/stores"
)

// brokenUserStore fails every lookup with a non-NotFound error
type brokenUserStore struct{}

func (brokenUserStore) GetUserByEmail(ctx context.Context, email string) (*wa.User, error) {
	return nil, errors.New("connection refused")
}

func (brokenUserStore) GetUserById(ctx context.Context, id string) (*wa.User, error) {
	return nil, errors.New("connection refused")
}

func (brokenUserStore) CreateUser(ctx context.Context, user *wa.User) (*wa.User, error) {
	return nil, errors.New("connection refused")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := wa.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret1" || !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("Expected a cost 10 bcrypt hash, got %q", hash)
	}
	if !wa.CheckPassword(hash, "secret1") {
		t.Error("Expected password to verify")
	}
	if wa.CheckPassword(hash, "secret2") {
		t.Error("Expected wrong password to fail")
	}
	if wa.CheckPassword("", "") {
		t.Error("An empty hash must never verify")
	}

	again, _ := wa.HashPassword("secret1")
	if again == hash {
		t.Error("Expected distinct salts for the same password")
	}
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	users := stores.NewFSUserStore(t.TempDir())

	user, authErr := wa.RegisterUser(ctx, users, wa.Registration{Name: "A", Email: "a@x.com", Password: "secret1"})
	if authErr != nil {
		t.Fatalf("RegisterUser failed: %v", authErr)
	}
	if user.Role != wa.RoleUser || user.Provider != wa.ProviderLocal {
		t.Errorf("Unexpected defaults: %+v", user)
	}
	if user.PasswordHash == "secret1" || !wa.CheckPassword(user.PasswordHash, "secret1") {
		t.Error("Expected the stored hash to verify the password")
	}

	_, authErr = wa.RegisterUser(ctx, users, wa.Registration{Name: "B", Email: "a@x.com", Password: "other"})
	if authErr == nil || authErr.Code != wa.ErrCodeDuplicateUser || authErr.Status != 400 {
		t.Errorf("Expected duplicate user error, got %v", authErr)
	}

	_, authErr = wa.RegisterUser(ctx, users, wa.Registration{Email: "c@x.com", Password: "secret1"})
	if authErr == nil || authErr.Code != wa.ErrCodeValidation {
		t.Errorf("Expected validation error, got %v", authErr)
	}

	_, authErr = wa.RegisterUser(ctx, brokenUserStore{}, wa.Registration{Name: "D", Email: "d@x.com", Password: "secret1"})
	if authErr == nil || authErr.Status != 500 {
		t.Errorf("Expected server error for a failing store, got %v", authErr)
	}
}

func TestLocalAuthenticatorReasons(t *testing.T) {
	ctx := context.Background()
	users := stores.NewFSUserStore(t.TempDir())
	if _, authErr := wa.RegisterUser(ctx, users, wa.Registration{Name: "A", Email: "a@x.com", Password: "secret1"}); authErr != nil {
		t.Fatalf("RegisterUser failed: %v", authErr)
	}
	auth := wa.NewLocalAuthenticator(users)

	tests := []struct {
		name   string
		auth   *wa.LocalAuthenticator
		creds  wa.Credentials
		reason wa.FailureReason
	}{
		{"success", auth, wa.LocalCredentials{Email: "a@x.com", Password: "secret1"}, wa.ReasonNone},
		{"unknown email", auth, wa.LocalCredentials{Email: "b@x.com", Password: "secret1"}, wa.ReasonNoSuchUser},
		{"wrong password", auth, wa.LocalCredentials{Email: "a@x.com", Password: "nope"}, wa.ReasonBadCredentials},
		{"wrong credential kind", auth, wa.OAuthCallback{}, wa.ReasonInternal},
		{"store failure", wa.NewLocalAuthenticator(brokenUserStore{}), wa.LocalCredentials{Email: "a@x.com", Password: "secret1"}, wa.ReasonInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.auth.Authenticate(ctx, tt.creds)
			if result.Reason != tt.reason {
				t.Errorf("Expected reason %s, got %s (%v)", tt.reason, result.Reason, result.Err)
			}
			if result.OK() != (tt.reason == wa.ReasonNone) {
				t.Errorf("OK() = %v for reason %s", result.OK(), result.Reason)
			}
		})
	}
}
