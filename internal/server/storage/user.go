package storage

import (
	"context"

	"github.com/minigate/minigate/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if username is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves user by username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// SetSessionHashes overwrites both stored token hashes in a single
	// update. Login and refresh both go through here; whichever call lands
	// last wins the row.
	SetSessionHashes(ctx context.Context, userID, accessHash, refreshHash string) error

	// ClearSession nulls both stored token hashes, ending the session
	// regardless of remaining token lifetime.
	ClearSession(ctx context.Context, userID string) error
}
