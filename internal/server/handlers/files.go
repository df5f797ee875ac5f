package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/minigate/minigate/internal/objstore"
	"github.com/minigate/minigate/pkg/api"
)

// allowedMimeTypes is the upload allowlist.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"image/webp":      {},
}

// multipartOverhead leaves room for multipart framing on top of the payload
// budget when bounding the request body.
const multipartOverhead = 64 * 1024

// FilesHandler proxies upload and download to the object store, scoped to
// the bucket of the app resolved by the api-key gate.
type FilesHandler struct {
	logger    *slog.Logger
	objects   objstore.Store
	maxUpload int64
}

// NewFilesHandler creates the files handler. maxUpload bounds a single
// payload in bytes.
func NewFilesHandler(logger *slog.Logger, objects objstore.Store, maxUpload int64) *FilesHandler {
	return &FilesHandler{
		logger:    logger,
		objects:   objects,
		maxUpload: maxUpload,
	}
}

// Upload handles POST /minio/upload (multipart form, field "file"). Size and
// MIME checks run before anything touches the object store. The stored
// object name is the original filename prefixed with a unix timestamp.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, ok := GetApp(ctx)
	if !ok {
		sendError(h.logger, w, "App not found in context", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			sendError(h.logger, w, "File size exceeds limit", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.WarnContext(ctx, "failed to parse multipart form", slog.Any("error", err))
		sendError(h.logger, w, "No file provided", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		sendError(h.logger, w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		sendError(h.logger, w, "File size exceeds limit", http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		sendError(h.logger, w, fmt.Sprintf("Unsupported file type: %s", mimeType), http.StatusUnsupportedMediaType)
		return
	}

	objectName := fmt.Sprintf("%d-%s", time.Now().Unix(), path.Base(header.Filename))

	if err := h.objects.Put(ctx, app.BucketName, objectName, file, header.Size, mimeType); err != nil {
		h.logger.ErrorContext(ctx, "failed to upload object",
			slog.String("bucket", app.BucketName),
			slog.Any("error", err))
		sendError(h.logger, w, "Failed to upload file", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "object uploaded",
		slog.String("bucket", app.BucketName),
		slog.String("object", objectName),
		slog.Int64("size", header.Size))

	sendJSON(h.logger, w, api.UploadResponse{
		Message:  "Uploaded",
		FileName: objectName,
		Size:     header.Size,
		MimeType: mimeType,
	}, http.StatusOK)
}

// Download handles GET /minio/download/{objectName}: raw bytes as an
// octet-stream attachment.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, ok := GetApp(ctx)
	if !ok {
		sendError(h.logger, w, "App not found in context", http.StatusInternalServerError)
		return
	}

	objectName := r.PathValue("objectName")

	body, size, err := h.objects.Get(ctx, app.BucketName, objectName)
	if err != nil {
		if errors.Is(err, objstore.ErrObjectNotFound) {
			sendError(h.logger, w, "Object not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get object",
			slog.String("bucket", app.BucketName),
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", objectName))
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		// headers are gone; nothing left to do but log
		h.logger.WarnContext(ctx, "failed to stream object",
			slog.String("bucket", app.BucketName),
			slog.Any("error", err))
	}
}
