package handlers

import (
	"context"

	"github.com/minigate/minigate/internal/models"
)

// contextKey is a private type for request context keys
type contextKey string

const (
	// UserKey holds the *models.User resolved by the auth gates
	UserKey contextKey = "user"
	// AppKey holds the *models.App resolved by the api-key gate
	AppKey contextKey = "app"
	// RefreshTokenKey holds the raw refresh token accepted by the refresh gate
	RefreshTokenKey contextKey = "refresh_token"
)

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser extracts the authenticated user from the request context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// WithApp returns a context carrying the app matched by its API key
func WithApp(ctx context.Context, app *models.App) context.Context {
	return context.WithValue(ctx, AppKey, app)
}

// GetApp extracts the matched app from the request context
func GetApp(ctx context.Context) (*models.App, bool) {
	app, ok := ctx.Value(AppKey).(*models.App)
	return app, ok
}

// WithRefreshToken returns a context carrying the raw refresh token
func WithRefreshToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, RefreshTokenKey, tok)
}

// GetRefreshToken extracts the raw refresh token from the request context
func GetRefreshToken(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(RefreshTokenKey).(string)
	return tok, ok
}
