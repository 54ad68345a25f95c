package webauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new password hashes
const PasswordCost = 10

// HashPassword returns the salted bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.  An empty hash (an
// account provisioned by an OAuth provider) never matches.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Registration is the input to RegisterUser
type Registration struct {
	Name     string
	Email    string
	Password string
}

// RegisterUser validates the registration, checks the email is free, hashes
// the password and stores a new user with the default role.  The store's own
// uniqueness constraint is authoritative: a concurrent registration that slips
// past the pre-check still comes back as a DuplicateUser error.
func RegisterUser(ctx context.Context, store UserStore, reg Registration) (*User, *AuthError) {
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return nil, NewValidationError(msgMissingFields)
	}

	existing, err := store.GetUserByEmail(ctx, reg.Email)
	if err == nil && existing != nil {
		return nil, NewDuplicateUserError(nil)
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, NewServerError(fmt.Errorf("failed to look up email: %w", err))
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, NewServerError(err)
	}

	user, err := store.CreateUser(ctx, &User{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         RoleUser,
		Provider:     ProviderLocal,
	})
	if errors.Is(err, ErrDuplicateUser) {
		return nil, NewDuplicateUserError(err)
	} else if err != nil {
		return nil, NewServerError(fmt.Errorf("failed to create user: %w", err))
	}
	return user, nil
}
