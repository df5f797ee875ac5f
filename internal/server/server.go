// Package server wires handlers, gates, and ambient middleware into the HTTP
// route table.
package server

import (
	"log/slog"
	"net/http"

	"github.com/minigate/minigate/internal/objstore"
	"github.com/minigate/minigate/internal/server/handlers"
	"github.com/minigate/minigate/internal/server/middleware"
	"github.com/minigate/minigate/internal/server/storage"
	"github.com/minigate/minigate/internal/token"
)

// Deps carries everything the router needs. All dependencies are constructed
// at startup and injected; the router holds no globals.
type Deps struct {
	Logger         *slog.Logger
	Users          storage.UserStorage
	Apps           storage.AppStorage
	Objects        objstore.Store
	Tokens         *token.Service
	DB             handlers.Pinger
	AuthLimiter    *middleware.RateLimiter
	BucketPrefix   string
	Version        string
	MaxUploadBytes int64
}

// NewRouter builds the route table:
//
//	POST /auth/login                      rate limit
//	POST /auth/refresh                    rate limit + refresh gate
//	POST /auth/logout                     rate limit + access gate
//	GET  /minio/apps                      access gate
//	POST /minio/apps                      access gate
//	POST /minio/apps/{id}/regenerate      access gate
//	POST /minio/upload                    api-key gate
//	GET  /minio/download/{objectName}     api-key gate
//	GET  /, /health, /ready               open
func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Logger, d.Users, d.Tokens)
	appsHandler := handlers.NewAppsHandler(d.Logger, d.Apps, d.Objects, d.Tokens, d.BucketPrefix)
	filesHandler := handlers.NewFilesHandler(d.Logger, d.Objects, d.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(d.Logger, d.DB, d.Version)

	accessGate := middleware.AccessAuth(d.Logger, d.Tokens, d.Users)
	refreshGate := middleware.RefreshAuth(d.Logger, d.Tokens, d.Users)
	apiKeyGate := middleware.APIKeyAuth(d.Logger, d.Tokens, d.Apps)
	rateLimit := d.AuthLimiter.Middleware

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", healthHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	mux.Handle("POST /auth/login", rateLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /auth/refresh", rateLimit(refreshGate(http.HandlerFunc(authHandler.Refresh))))
	mux.Handle("POST /auth/logout", rateLimit(accessGate(http.HandlerFunc(authHandler.Logout))))

	mux.Handle("GET /minio/apps", accessGate(http.HandlerFunc(appsHandler.List)))
	mux.Handle("POST /minio/apps", accessGate(http.HandlerFunc(appsHandler.Create)))
	mux.Handle("POST /minio/apps/{id}/regenerate", accessGate(http.HandlerFunc(appsHandler.RegenerateKey)))

	mux.Handle("POST /minio/upload", apiKeyGate(http.HandlerFunc(filesHandler.Upload)))
	mux.Handle("GET /minio/download/{objectName}", apiKeyGate(http.HandlerFunc(filesHandler.Download)))

	// recovery sits inside logging so a panic is logged with its 500 status
	var root http.Handler = mux
	root = middleware.Recovery(d.Logger)(root)
	root = middleware.Logging(d.Logger)(root)
	return root
}
