package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/example/todo-app/database"
	domain "github.com/example/todo-app/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only when MONGO_TEST_URI is set.
func newMongoTestRepository(t *testing.T) *MongoUserRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, database.Config{
		Driver:       database.DriverMongo,
		MongoURI:     uri,
		DatabaseName: "todo_test_" + uuid.NewString()[:8],
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Mongo.Drop(context.Background())
		_ = db.Close(context.Background())
	})

	repo, err := NewMongoUserRepository(ctx, db.Mongo)
	require.NoError(t, err)
	return repo
}

func TestMongoUserRepository(t *testing.T) {
	repo := newMongoTestRepository(t)
	ctx := context.Background()

	user := &domain.User{Username: "alice", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, user))
	assert.Len(t, user.ID, 24)

	err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrUserExists)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, ErrUserNotFound)

	exists, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UsernameExists(ctx, "ALICE")
	require.NoError(t, err)
	assert.False(t, exists)
}
