//go:build !wasm
// +build !wasm

package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	wa "github.com/panyam/webauth"
)

// AutoMigrate creates or updates the users table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}

// UserStore implements wa.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, user *wa.User) (*wa.User, error) {
	model := UserToModel(user)
	model.ID = uuid.NewString()
	if model.Role == "" {
		model.Role = string(wa.RoleUser)
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", wa.ErrDuplicateUser, user.Email)
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) GetUserById(ctx context.Context, userId string) (*wa.User, error) {
	return s.first(ctx, "id = ?", userId)
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*wa.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *UserStore) first(ctx context.Context, query string, arg string) (*wa.User, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, arg)
		}
		return nil, err
	}
	return model.ToUser(), nil
}

var _ wa.UserStore = (*UserStore)(nil)
