package webauth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned by a UserStore when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned by a UserStore when the email is already taken.
	// Backends must surface their own uniqueness constraint as this error.
	ErrDuplicateUser = errors.New("user already exists")
)

// Role is the coarse grained role stored on a user record
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ProviderLocal is the provider name for accounts created through registration
const ProviderLocal = "local"

// User is the identity record held by the credential store
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         Role      `json:"role"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the projection of a User that is safe to send to clients
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// Public returns the id, name and email of the user
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PublicWithRole is Public plus the role
func (u *User) PublicWithRole() PublicUser {
	out := u.Public()
	out.Role = u.Role
	return out
}

// UserStore is the credential store.  Lookups are by exact email match or by
// primary key.  CreateUser assigns the ID and must reject an email that is
// already stored with ErrDuplicateUser.
type UserStore interface {
	// GetUserByEmail returns ErrUserNotFound if no user has this email
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserById returns ErrUserNotFound if the id does not exist
	GetUserById(ctx context.Context, id string) (*User, error)

	// CreateUser stores a new user, filling in ID and timestamps
	CreateUser(ctx context.Context, user *User) (*User, error)
}
