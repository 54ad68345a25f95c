package stores_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wa "github.com/panyam/webauth"
	"github.com/panyam/webauth/stores"
)

func TestFSUserStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := stores.NewFSUserStore(t.TempDir())

	created, err := store.CreateUser(ctx, &wa.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, wa.RoleUser, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	byId, err := store.GetUserById(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byId.Email)
	assert.Equal(t, "hash", byId.PasswordHash)

	byEmail, err := store.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestFSUserStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := stores.NewFSUserStore(t.TempDir())

	_, err := store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, wa.ErrUserNotFound)

	_, err = store.GetUserById(ctx, "8b7c5c38-0e4c-4a8f-9c55-0d1f0c1e2a3b")
	assert.ErrorIs(t, err, wa.ErrUserNotFound)

	_, err = store.GetUserById(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, wa.ErrUserNotFound)
}

func TestFSUserStoreEmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	store := stores.NewFSUserStore(t.TempDir())

	_, err := store.CreateUser(ctx, &wa.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	_, err = store.GetUserByEmail(ctx, "Ann@example.com")
	assert.ErrorIs(t, err, wa.ErrUserNotFound)

	_, err = store.CreateUser(ctx, &wa.User{Name: "Ann", Email: "Ann@example.com"})
	assert.NoError(t, err)
}

func TestFSUserStoreDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := stores.NewFSUserStore(t.TempDir())

	first, err := store.CreateUser(ctx, &wa.User{Name: "A", Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, &wa.User{Name: "B", Email: "dup@example.com"})
	assert.ErrorIs(t, err, wa.ErrDuplicateUser)

	// the losing record must not linger
	got, err := store.GetUserByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestFSUserStoreConcurrentRegistrationsKeepOneUser(t *testing.T) {
	ctx := context.Background()
	store := stores.NewFSUserStore(t.TempDir())

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.CreateUser(ctx, &wa.User{Name: fmt.Sprintf("u%d", i), Email: "race@example.com"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, wa.ErrDuplicateUser)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestFSUserStoreReadsDuringCreateSeeWholeIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := stores.NewFSUserStore(dir)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("u%d@example.com", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.CreateUser(ctx, &wa.User{Name: "u", Email: email})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				user, err := store.GetUserByEmail(ctx, email)
				if err != nil {
					assert.ErrorIs(t, err, wa.ErrUserNotFound)
					continue
				}
				assert.Equal(t, email, user.Email)
			}
		}()
	}
	wg.Wait()

	// temp files used to publish the index must not linger
	entries, err := os.ReadDir(filepath.Join(dir, "emails"))
	require.NoError(t, err)
	assert.Len(t, entries, n)
}
