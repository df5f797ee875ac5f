package storage

import (
	"context"

	"github.com/minigate/minigate/internal/models"
)

// AppStorage defines interface for app registry persistence
type AppStorage interface {
	// CreateApp creates a new app row
	// Returns ErrAppAlreadyExists if the name or bucket is taken
	CreateApp(ctx context.Context, app *models.App) error

	// GetAppByID retrieves an app by ID
	// Returns ErrAppNotFound if the app doesn't exist
	GetAppByID(ctx context.Context, appID string) (*models.App, error)

	// ListApps returns every registered app, oldest first.
	ListApps(ctx context.Context) ([]*models.App, error)

	// ListAppsWithKeys returns every app with a non-empty API key hash.
	// The api-key gate scans this set linearly on each request.
	ListAppsWithKeys(ctx context.Context) ([]*models.App, error)

	// UpdateAPIKeyHash replaces the stored key hash (key regeneration)
	// Returns ErrAppNotFound if the app doesn't exist
	UpdateAPIKeyHash(ctx context.Context, appID, keyHash string) error
}
