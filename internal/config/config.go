// Package config loads and validates app config from env and an optional .env
// file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabasePath is the SQLite database file; ":memory:" for tests.
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	// JWTSecret signs session tokens. Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// AccessTokenTTL is the access token lifetime (e.g. "15m").
	AccessTokenTTL time.Duration `mapstructure:"JWT_ACCESS_TTL"`
	// RefreshTokenTTL is the refresh token lifetime (e.g. "168h").
	RefreshTokenTTL time.Duration `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the cost factor for password, token, and API key hashes.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// MinioEndpoint is the object store host:port, without scheme.
	MinioEndpoint string `mapstructure:"MINIO_ENDPOINT"`
	// MinioAccessKey and MinioSecretKey are the object store credentials.
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	// MinioUseSSL toggles TLS towards the object store.
	MinioUseSSL bool `mapstructure:"MINIO_USE_SSL"`
	// BucketPrefix prefixes every derived bucket name (e.g. "app").
	BucketPrefix string `mapstructure:"BUCKET_PREFIX"`

	// MaxUploadBytes bounds a single upload body.
	MaxUploadBytes int64 `mapstructure:"MAX_UPLOAD_BYTES"`

	// AuthRateLimit is the per-client request budget for /auth endpoints
	// within AuthRateWindow.
	AuthRateLimit int `mapstructure:"AUTH_RATE_LIMIT"`
	// AuthRateWindow is the rate limit window (e.g. "1m").
	AuthRateWindow time.Duration `mapstructure:"AUTH_RATE_WINDOW"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env; missing .env is ignored (e.g. in CI).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_PATH", "./data/minigate.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("BUCKET_PREFIX", "app")
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("AUTH_RATE_LIMIT", 30)
	v.SetDefault("AUTH_RATE_WINDOW", "1m")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH must be set")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return errors.New("JWT_REFRESH_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
