package stores

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	wa "github.com/panyam/webauth"
)

// FSUserStore keeps one JSON file per user plus an email index file per email.
// The index file is created with O_EXCL, which is what makes emails unique
// across concurrent registrations.
type FSUserStore struct {
	StoragePath string
}

func NewFSUserStore(storagePath string) *FSUserStore {
	return &FSUserStore{StoragePath: storagePath}
}

type fsEmailIndex struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
}

func (s *FSUserStore) getUserPath(userId string) string {
	return filepath.Join(s.StoragePath, "users", userId+".json")
}

// emails are hashed so that any byte sequence maps to a safe file name
func (s *FSUserStore) getEmailPath(email string) string {
	sum := sha256.Sum256([]byte(email))
	return filepath.Join(s.StoragePath, "emails", hex.EncodeToString(sum[:])+".json")
}

func (s *FSUserStore) CreateUser(ctx context.Context, user *wa.User) (*wa.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := *user
	out.ID = uuid.NewString()
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now
	if out.Role == "" {
		out.Role = wa.RoleUser
	}

	if err := s.saveUser(&out); err != nil {
		return nil, err
	}

	if err := s.reserveEmail(out.Email, out.ID); err != nil {
		os.Remove(s.getUserPath(out.ID))
		return nil, err
	}
	return &out, nil
}

// reserveEmail writes the index to a temp file and hard links it into place.
// The link fails if the index exists, and readers only ever see a complete
// index file.
func (s *FSUserStore) reserveEmail(email, userId string) error {
	path := s.getEmailPath(email)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.Marshal(fsEmailIndex{UserId: userId, Email: email})
	if err != nil {
		return fmt.Errorf("failed to encode email index: %w", err)
	}

	tmpPath, err := writeTempFile(dir, data)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if err := os.Link(tmpPath, path); os.IsExist(err) {
		return fmt.Errorf("%w: %s", wa.ErrDuplicateUser, email)
	} else if err != nil {
		return fmt.Errorf("failed to reserve email: %w", err)
	}
	return nil
}

func (s *FSUserStore) GetUserById(ctx context.Context, userId string) (*wa.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// ids are generated by us, anything else cannot name a user file
	if _, err := uuid.Parse(userId); err != nil {
		return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, userId)
	}
	data, err := os.ReadFile(s.getUserPath(userId))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, userId)
	} else if err != nil {
		return nil, err
	}

	var user wa.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("corrupt user file %s: %w", userId, err)
	}
	return &user, nil
}

func (s *FSUserStore) GetUserByEmail(ctx context.Context, email string) (*wa.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.getEmailPath(email))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, email)
	} else if err != nil {
		return nil, err
	}

	var index fsEmailIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("corrupt email index for %s: %w", email, err)
	}
	// the hash only picks the file, the stored email is the exact match
	if index.Email != email {
		return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, email)
	}
	return s.GetUserById(ctx, index.UserId)
}

func (s *FSUserStore) saveUser(user *wa.User) error {
	path := s.getUserPath(user.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

// writeAtomicFile writes to a temp file in the same directory, syncs it and
// renames it over path so readers never see a partial user record
func writeAtomicFile(path string, data []byte) error {
	tmpPath, err := writeTempFile(filepath.Dir(path), data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// writeTempFile writes and syncs data to a new temp file in dir
func writeTempFile(dir string, data []byte) (string, error) {
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func(err error) (string, error) {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", err
	}

	if _, err := tmpFile.Write(data); err != nil {
		return cleanup(fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmpFile.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to sync temp file: %w", err))
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmpPath, nil
}

var _ wa.UserStore = (*FSUserStore)(nil)
