package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/minigate/minigate/internal/models"
	"github.com/minigate/minigate/internal/server/storage"
	"github.com/minigate/minigate/internal/token"
	"github.com/minigate/minigate/pkg/api"
)

// AuthHandler serves the session lifecycle: login, refresh, logout.
type AuthHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
	tokens *token.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, tokens *token.Service) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		users:  users,
		tokens: tokens,
	}
}

// Login handles POST /auth/login. A successful login issues a fresh token
// pair and overwrites any previously stored hashes: one live session per
// user, a second login silently invalidates the first.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: unknown user", slog.String("username", req.Username))
			sendError(h.logger, w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !h.tokens.VerifyPassword(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "login failed: bad password", slog.String("username", req.Username))
		sendError(h.logger, w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	resp, err := h.issueSession(r, user)
	if err != nil {
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Refresh handles POST /auth/refresh behind the refresh gate. Both tokens
// are rotated; the presented refresh token dies with the overwritten hash,
// with no grace window.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := GetUser(ctx)
	if !ok {
		sendError(h.logger, w, "User not found", http.StatusUnauthorized)
		return
	}

	// The raw token is only logged; the new pair is independent of it.
	if old, ok := GetRefreshToken(ctx); ok {
		h.logger.DebugContext(ctx, "rotating session",
			slog.String("user_id", user.ID),
			slog.String("refresh_token", token.Obfuscate(old)))
	}

	resp, err := h.issueSession(r, user)
	if err != nil {
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout handles POST /auth/logout behind the access gate. Both stored
// hashes are nulled; outstanding tokens fail the hash check from here on
// even though their signatures are still valid.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := GetUser(ctx)
	if !ok {
		sendError(h.logger, w, "User not found", http.StatusUnauthorized)
		return
	}

	if err := h.users.ClearSession(ctx, user.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to clear session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged out", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.MessageResponse{Message: "Logged out"}, http.StatusOK)
}

// issueSession signs a fresh token pair and stores both hashes in a single
// update. Concurrent calls for the same user race on the row; last write
// wins and the loser's pair is dead on arrival.
func (h *AuthHandler) issueSession(r *http.Request, user *models.User) (*api.TokenResponse, error) {
	ctx := r.Context()

	access, err := h.tokens.IssueAccessToken(user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue access token", slog.Any("error", err))
		return nil, err
	}

	refresh, err := h.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue refresh token", slog.Any("error", err))
		return nil, err
	}

	accessHash, err := h.tokens.HashValue(access)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash access token", slog.Any("error", err))
		return nil, err
	}

	refreshHash, err := h.tokens.HashValue(refresh)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash refresh token", slog.Any("error", err))
		return nil, err
	}

	if err := h.users.SetSessionHashes(ctx, user.ID, accessHash, refreshHash); err != nil {
		h.logger.ErrorContext(ctx, "failed to store session hashes", slog.Any("error", err))
		return nil, err
	}

	return &api.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
