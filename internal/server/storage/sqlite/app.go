package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/minigate/minigate/internal/models"
	"github.com/minigate/minigate/internal/server/storage"
)

const appColumns = `id, name, description, api_key_hash, bucket_name, created_at`

// CreateApp creates a new app row
func (s *Storage) CreateApp(ctx context.Context, app *models.App) error {
	query := `
		INSERT INTO apps (` + appColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		app.ID,
		app.Name,
		app.Description,
		app.APIKeyHash,
		app.BucketName,
		app.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrAppAlreadyExists
		}
		return fmt.Errorf("failed to insert app: %w", err)
	}

	return nil
}

// GetAppByID retrieves an app by ID
func (s *Storage) GetAppByID(ctx context.Context, appID string) (*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE id = ?`

	app := &models.App{}
	err := s.db.QueryRowContext(ctx, query, appID).Scan(
		&app.ID,
		&app.Name,
		&app.Description,
		&app.APIKeyHash,
		&app.BucketName,
		&app.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}

	return app, nil
}

// ListApps returns every registered app, oldest first
func (s *Storage) ListApps(ctx context.Context) ([]*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps ORDER BY created_at ASC, id ASC`
	return s.queryApps(ctx, query)
}

// ListAppsWithKeys returns every app with a non-empty API key hash
func (s *Storage) ListAppsWithKeys(ctx context.Context) ([]*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE api_key_hash != '' ORDER BY created_at ASC, id ASC`
	return s.queryApps(ctx, query)
}

func (s *Storage) queryApps(ctx context.Context, query string) ([]*models.App, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query apps: %w", err)
	}
	defer rows.Close()

	var apps []*models.App
	for rows.Next() {
		app := &models.App{}
		if err := rows.Scan(
			&app.ID,
			&app.Name,
			&app.Description,
			&app.APIKeyHash,
			&app.BucketName,
			&app.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate apps: %w", err)
	}

	return apps, nil
}

// UpdateAPIKeyHash replaces the stored key hash (key regeneration)
func (s *Storage) UpdateAPIKeyHash(ctx context.Context, appID, keyHash string) error {
	query := `UPDATE apps SET api_key_hash = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, keyHash, appID)
	if err != nil {
		return fmt.Errorf("failed to update api key hash: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrAppNotFound
	}

	return nil
}
