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

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, access_token_hash, refresh_token_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.AccessTokenHash,
		user.RefreshTokenHash,
		user.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, access_token_hash, refresh_token_hash, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, access_token_hash, refresh_token_hash, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, userID))
}

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var accessHash, refreshHash sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&accessHash,
		&refreshHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if accessHash.Valid {
		user.AccessTokenHash = &accessHash.String
	}
	if refreshHash.Valid {
		user.RefreshTokenHash = &refreshHash.String
	}

	return user, nil
}

// SetSessionHashes overwrites both stored token hashes in a single update
func (s *Storage) SetSessionHashes(ctx context.Context, userID, accessHash, refreshHash string) error {
	query := `UPDATE users SET access_token_hash = ?, refresh_token_hash = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, accessHash, refreshHash, userID)
	if err != nil {
		return fmt.Errorf("failed to set session hashes: %w", err)
	}

	return s.requireRow(result)
}

// ClearSession nulls both stored token hashes
func (s *Storage) ClearSession(ctx context.Context, userID string) error {
	query := `UPDATE users SET access_token_hash = NULL, refresh_token_hash = NULL WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return s.requireRow(result)
}

func (s *Storage) requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}
