//go:build integration

package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	wa "github.com/panyam/webauth"
	mongostore "github.com/panyam/webauth/stores/mongo"
)

var mongoURI string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		panic(err)
	}
	mongoURI = fmt.Sprintf("mongodb://%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(options.Client().ApplyURI(mongoURI))
	require.NoError(t, err)
	db := client.Database(fmt.Sprintf("webauth_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	users := mongostore.NewUserStore(testDatabase(t))
	require.NoError(t, users.EnsureIndexes(ctx))

	created, err := users.CreateUser(ctx, &wa.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)
	assert.Equal(t, wa.RoleUser, created.Role)

	byEmail, err := users.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byId, err := users.GetUserById(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byId.Name)

	_, err = users.CreateUser(ctx, &wa.User{Name: "Other", Email: "ann@example.com"})
	assert.ErrorIs(t, err, wa.ErrDuplicateUser)

	_, err = users.GetUserByEmail(ctx, "ANN@example.com")
	assert.ErrorIs(t, err, wa.ErrUserNotFound)

	_, err = users.GetUserById(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, wa.ErrUserNotFound)

	_, err = users.GetUserById(ctx, "0123456789abcdef01234567")
	assert.ErrorIs(t, err, wa.ErrUserNotFound)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	sessions := mongostore.NewSessionStore(testDatabase(t))
	require.NoError(t, sessions.EnsureIndexes(ctx))

	_, found, err := sessions.FindCtx(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, sessions.CommitCtx(ctx, "tok", []byte("one"), time.Now().Add(time.Hour)))
	require.NoError(t, sessions.CommitCtx(ctx, "tok", []byte("two"), time.Now().Add(time.Hour)))
	data, found, err := sessions.FindCtx(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("two"), data)

	require.NoError(t, sessions.Commit("old", []byte("x"), time.Now().Add(-time.Second)))
	_, found, err = sessions.Find("old")
	require.NoError(t, err)
	assert.False(t, found, "expired sessions must not be returned")

	require.NoError(t, sessions.DeleteCtx(ctx, "tok"))
	_, found, err = sessions.FindCtx(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, sessions.Delete("tok"))
}
