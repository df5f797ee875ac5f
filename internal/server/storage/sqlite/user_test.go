package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minigate/minigate/internal/server/storage"
)

func TestUserStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := testUser("admin")
	require.NoError(t, s.CreateUser(ctx, user))

	byName, err := s.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, user.PasswordHash, byName.PasswordHash)
	assert.Nil(t, byName.AccessTokenHash)
	assert.Nil(t, byName.RefreshTokenHash)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", byID.Username)
}

func TestUserStorage_CreateDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateUser(ctx, testUser("admin")))

	err := s.CreateUser(ctx, testUser("admin"))
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserStorage_GetMissing(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByID(ctx, "missing-id")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserStorage_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := testUser("admin")
	require.NoError(t, s.CreateUser(ctx, user))

	// login: both hashes set
	require.NoError(t, s.SetSessionHashes(ctx, user.ID, "access-hash-1", "refresh-hash-1"))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AccessTokenHash)
	require.NotNil(t, got.RefreshTokenHash)
	assert.Equal(t, "access-hash-1", *got.AccessTokenHash)
	assert.Equal(t, "refresh-hash-1", *got.RefreshTokenHash)

	// refresh: rotation overwrites both
	require.NoError(t, s.SetSessionHashes(ctx, user.ID, "access-hash-2", "refresh-hash-2"))

	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "access-hash-2", *got.AccessTokenHash)
	assert.Equal(t, "refresh-hash-2", *got.RefreshTokenHash)

	// logout: both nulled
	require.NoError(t, s.ClearSession(ctx, user.ID))

	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AccessTokenHash)
	assert.Nil(t, got.RefreshTokenHash)
}

func TestUserStorage_SessionUpdatesMissingUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.SetSessionHashes(ctx, "missing-id", "a", "r")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	err = s.ClearSession(ctx, "missing-id")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
