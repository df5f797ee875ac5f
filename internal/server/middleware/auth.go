package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minigate/minigate/internal/models"
	"github.com/minigate/minigate/internal/server/handlers"
	"github.com/minigate/minigate/internal/server/storage"
	"github.com/minigate/minigate/internal/token"
	"github.com/minigate/minigate/pkg/api"
)

// AccessAuth guards endpoints behind a bearer access token. The token must
// carry a valid signature and the access kind, and must additionally match
// the bcrypt hash stored on the user row: a signed token whose hash was
// overwritten (re-login, refresh) or nulled (logout) is rejected.
func AccessAuth(logger *slog.Logger, tokens *token.Service, users storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Authorization Bearer token required")
				return
			}

			claims, err := tokens.VerifyToken(raw, token.KindAccess)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", slog.Any("error", err))
				unauthorized(w, "Invalid access token")
				return
			}

			user, err := resolveSession(r, logger, tokens, users, claims.Subject, raw, sessionAccess)
			if err != nil {
				if errors.Is(err, errStoreFailure) {
					serverError(w)
					return
				}
				unauthorized(w, "Access token revoked")
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
		})
	}
}

// RefreshAuth guards the refresh endpoint behind a bearer refresh token,
// checked against the stored refresh hash. On success the handler sees both
// the resolved user and the raw token.
func RefreshAuth(logger *slog.Logger, tokens *token.Service, users storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Authorization Bearer token required")
				return
			}

			claims, err := tokens.VerifyToken(raw, token.KindRefresh)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid refresh token", slog.Any("error", err))
				unauthorized(w, "Invalid refresh token")
				return
			}

			user, err := resolveSession(r, logger, tokens, users, claims.Subject, raw, sessionRefresh)
			if err != nil {
				if errors.Is(err, errStoreFailure) {
					serverError(w)
					return
				}
				unauthorized(w, "Invalid refresh token")
				return
			}

			ctx := handlers.WithUser(r.Context(), user)
			ctx = handlers.WithRefreshToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type sessionKind int

const (
	sessionAccess sessionKind = iota
	sessionRefresh
)

var (
	errSessionRevoked = errors.New("session revoked")
	errStoreFailure   = errors.New("session store failure")
)

// resolveSession loads the token's subject and compares the raw token against
// the stored hash for the given kind. Single pass, no retries. A store error
// other than a missing user is errStoreFailure: the session may be perfectly
// live and must not be reported as revoked.
func resolveSession(
	r *http.Request,
	logger *slog.Logger,
	tokens *token.Service,
	users storage.UserStorage,
	userID, raw string,
	kind sessionKind,
) (*models.User, error) {
	user, err := users.GetUserByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			logger.ErrorContext(r.Context(), "failed to load user for token check", slog.Any("error", err))
			return nil, errStoreFailure
		}
		return nil, errSessionRevoked
	}

	hash := user.AccessTokenHash
	if kind == sessionRefresh {
		hash = user.RefreshTokenHash
	}
	if hash == nil || !tokens.VerifyValue(raw, *hash) {
		return nil, errSessionRevoked
	}

	return user, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

func serverError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
