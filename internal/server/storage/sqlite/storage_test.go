package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minigate/minigate/internal/models"
)

// setupTestStorage creates an in-memory storage with migrations applied
func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)

	return s, func() {
		_ = s.Close()
	}
}

func testUser(username string) *models.User {
	return &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func testApp(name string) *models.App {
	return &models.App{
		ID:          uuid.New().String(),
		Name:        name,
		Description: "test app",
		APIKeyHash:  "$2a$10$fakekeyhashfakekeyhash",
		BucketName:  "app-" + name,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}
