package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/minigate/minigate/internal/models"
	"github.com/minigate/minigate/internal/objstore"
	"github.com/minigate/minigate/internal/server/storage"
	"github.com/minigate/minigate/internal/token"
	"github.com/minigate/minigate/internal/validation"
	"github.com/minigate/minigate/pkg/api"
)

// AppsHandler serves the app registry: list, create, key regeneration.
type AppsHandler struct {
	logger       *slog.Logger
	apps         storage.AppStorage
	objects      objstore.Store
	tokens       *token.Service
	bucketPrefix string
}

// NewAppsHandler creates the apps handler. bucketPrefix prefixes every
// derived bucket name.
func NewAppsHandler(logger *slog.Logger, apps storage.AppStorage, objects objstore.Store, tokens *token.Service, bucketPrefix string) *AppsHandler {
	return &AppsHandler{
		logger:       logger,
		apps:         apps,
		objects:      objects,
		tokens:       tokens,
		bucketPrefix: bucketPrefix,
	}
}

// List handles GET /minio/apps. API keys appear obfuscated; the plaintext
// key is unrecoverable once creation or regeneration responded.
func (h *AppsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := h.apps.ListApps(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list apps", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	summaries := make([]api.AppSummary, 0, len(apps))
	for _, app := range apps {
		summaries = append(summaries, appSummary(app))
	}

	sendJSON(h.logger, w, summaries, http.StatusOK)
}

// Create handles POST /minio/apps: derive the bucket name, ensure the bucket,
// generate and hash an API key, persist the row. A bucket provisioning
// failure is logged but does not abort creation; the bucket is retried
// implicitly the next time the name is ensured.
func (h *AppsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create app request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateAppName(req.Name); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	bucketName := objstore.BucketName(h.bucketPrefix, req.Name)

	if err := h.objects.EnsureBucket(ctx, bucketName); err != nil {
		h.logger.ErrorContext(ctx, "failed to ensure bucket, continuing app creation",
			slog.String("bucket", bucketName),
			slog.Any("error", err))
	}

	apiKey, err := token.GenerateAPIKey()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate api key", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	keyHash, err := h.tokens.HashValue(apiKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash api key", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	app := &models.App{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		APIKeyHash:  keyHash,
		BucketName:  bucketName,
		CreatedAt:   time.Now(),
	}

	if err := h.apps.CreateApp(ctx, app); err != nil {
		if errors.Is(err, storage.ErrAppAlreadyExists) {
			sendError(h.logger, w, "app name already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create app", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "app created",
		slog.String("app_id", app.ID),
		slog.String("name", app.Name),
		slog.String("bucket", bucketName))

	sendJSON(h.logger, w, api.CreateAppResponse{
		BucketName: bucketName,
		APIKey:     apiKey,
		App:        appSummary(app),
	}, http.StatusOK)
}

// RegenerateKey handles POST /minio/apps/{id}/regenerate. The old key stops
// matching the moment the new hash lands.
func (h *AppsHandler) RegenerateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID := r.PathValue("id")

	if _, err := h.apps.GetAppByID(ctx, appID); err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			sendError(h.logger, w, "App not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get app", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	apiKey, err := token.GenerateAPIKey()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate api key", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	keyHash, err := h.tokens.HashValue(apiKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash api key", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.apps.UpdateAPIKeyHash(ctx, appID, keyHash); err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			sendError(h.logger, w, "App not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update api key hash", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "api key regenerated", slog.String("app_id", appID))

	sendJSON(h.logger, w, api.RegenerateKeyResponse{
		Message: "API key regenerated",
		APIKey:  apiKey,
	}, http.StatusOK)
}

// appSummary renders the public view of an app. The key hash shows as
// first4+****+last4; an app without a key renders null.
func appSummary(app *models.App) api.AppSummary {
	var obfuscated *string
	if masked := token.Obfuscate(app.APIKeyHash); masked != "" {
		obfuscated = &masked
	}

	return api.AppSummary{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		BucketName:  app.BucketName,
		APIKey:      obfuscated,
		CreatedAt:   app.CreatedAt,
	}
}
