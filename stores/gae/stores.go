//go:build !wasm
// +build !wasm

package gae

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/google/uuid"

	wa "github.com/panyam/webauth"
)

// Kind constants for Datastore entities
const (
	KindUser      = "User"
	KindUserEmail = "UserEmail"
)

// UserStore implements wa.UserStore using Google Cloud Datastore
type UserStore struct {
	client    *datastore.Client
	namespace string
}

// NewUserStore creates a new Datastore-backed UserStore
func NewUserStore(client *datastore.Client, namespace string) *UserStore {
	return &UserStore{client: client, namespace: namespace}
}

func (s *UserStore) namespacedKey(kind, name string) *datastore.Key {
	key := datastore.NameKey(kind, name, nil)
	key.Namespace = s.namespace
	return key
}

func (s *UserStore) CreateUser(ctx context.Context, user *wa.User) (*wa.User, error) {
	out := *user
	out.ID = uuid.NewString()
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now
	if out.Role == "" {
		out.Role = wa.RoleUser
	}

	userKey := s.namespacedKey(KindUser, out.ID)
	emailKey := s.namespacedKey(KindUserEmail, out.Email)
	_, err := s.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var existing UserEmailEntity
		if err := tx.Get(emailKey, &existing); err == nil {
			return fmt.Errorf("%w: %s", wa.ErrDuplicateUser, out.Email)
		} else if !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}

		if _, err := tx.Put(emailKey, &UserEmailEntity{UserID: out.ID, CreatedAt: now}); err != nil {
			return err
		}
		_, err := tx.Put(userKey, UserToEntity(&out, userKey))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserStore) GetUserById(ctx context.Context, userId string) (*wa.User, error) {
	key := s.namespacedKey(KindUser, userId)
	var entity UserEntity
	if err := s.client.Get(ctx, key, &entity); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, userId)
		}
		return nil, err
	}
	entity.Key = key
	return entity.ToUser(), nil
}

// GetUserByEmail resolves the email entity first so the lookup is a strongly
// consistent key read rather than an eventually consistent query
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*wa.User, error) {
	var index UserEmailEntity
	if err := s.client.Get(ctx, s.namespacedKey(KindUserEmail, email), &index); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, email)
		}
		return nil, err
	}
	return s.GetUserById(ctx, index.UserID)
}

var _ wa.UserStore = (*UserStore)(nil)
