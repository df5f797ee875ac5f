package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogging_PassesThrough(t *testing.T) {
	handler := Logging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"ok":true}`, w.Body.String())
}

func TestLogging_DefaultStatusIsOK(t *testing.T) {
	handler := Logging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no explicit WriteHeader
		_, _ = w.Write([]byte("hi"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/health", want: "/health"},
		{path: "/minio/upload", want: "/minio/upload"},
		{path: "/minio/download/", want: "/minio/download/"},
		{path: "/minio/download/report.pdf", want: "/minio/download/***"},
		{path: "/minio/download/1700000000-secret-name.png", want: "/minio/download/***"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizePath(tt.path), tt.path)
	}
}
