package middleware

import (
	"log/slog"
	"net/http"

	"github.com/minigate/minigate/internal/server/handlers"
	"github.com/minigate/minigate/internal/server/storage"
	"github.com/minigate/minigate/internal/token"
)

// APIKeyHeader is the header carrying the app API key.
const APIKeyHeader = "x-api-key"

// APIKeyAuth guards the upload/download endpoints behind an app API key.
// Every app row with a stored key hash is loaded and the supplied key is
// compared against each hash until one matches; first match wins. This is
// O(apps) bcrypt comparisons per request, acceptable while the app count
// stays small.
func APIKeyAuth(logger *slog.Logger, tokens *token.Service, apps storage.AppStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				unauthorized(w, "Missing x-api-key header")
				return
			}

			candidates, err := apps.ListAppsWithKeys(r.Context())
			if err != nil {
				logger.ErrorContext(r.Context(), "failed to list apps for api key check", slog.Any("error", err))
				serverError(w)
				return
			}

			for _, app := range candidates {
				if tokens.VerifyValue(apiKey, app.APIKeyHash) {
					next.ServeHTTP(w, r.WithContext(handlers.WithApp(r.Context(), app)))
					return
				}
			}

			logger.WarnContext(r.Context(), "api key matched no app")
			unauthorized(w, "Invalid API key")
		})
	}
}
