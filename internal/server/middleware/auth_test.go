package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/minigate/minigate/internal/models"
	"github.com/minigate/minigate/internal/server/handlers"
	"github.com/minigate/minigate/internal/server/storage"
	"github.com/minigate/minigate/internal/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokenService() *token.Service {
	return token.NewService("test-secret-key", 15*time.Minute, 7*24*time.Hour, bcrypt.MinCost)
}

// mockUserStorage is a map-backed UserStorage for gate tests
type mockUserStorage struct {
	users  map[string]*models.User // id -> user
	getErr error                   // returned by GetUserByID when set
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStorage) SetSessionHashes(ctx context.Context, userID, accessHash, refreshHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.AccessTokenHash = &accessHash
	u.RefreshTokenHash = &refreshHash
	return nil
}

func (m *mockUserStorage) ClearSession(ctx context.Context, userID string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.AccessTokenHash = nil
	u.RefreshTokenHash = nil
	return nil
}

// seedSession creates a user with a live session and returns the raw token
// pair.
func seedSession(t *testing.T, svc *token.Service, users *mockUserStorage) (user *models.User, access, refresh string) {
	t.Helper()

	access, err := svc.IssueAccessToken("user-1", "admin")
	require.NoError(t, err)
	refresh, err = svc.IssueRefreshToken("user-1")
	require.NoError(t, err)

	accessHash, err := svc.HashValue(access)
	require.NoError(t, err)
	refreshHash, err := svc.HashValue(refresh)
	require.NoError(t, err)

	user = &models.User{
		ID:               "user-1",
		Username:         "admin",
		PasswordHash:     "irrelevant",
		AccessTokenHash:  &accessHash,
		RefreshTokenHash: &refreshHash,
	}
	users.users[user.ID] = user
	return user, access, refresh
}

func TestAccessAuth_Success(t *testing.T) {
	svc := testTokenService()
	users := &mockUserStorage{users: map[string]*models.User{}}
	_, access, _ := seedSession(t, svc, users)

	var gotUser *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := handlers.GetUser(r.Context())
		require.True(t, ok)
		gotUser = u
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	AccessAuth(testLogger(), svc, users)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, "user-1", gotUser.ID)
}

func TestAccessAuth_Rejections(t *testing.T) {
	svc := testTokenService()
	users := &mockUserStorage{users: map[string]*models.User{}}
	user, access, refresh := seedSession(t, svc, users)

	// a token for a user that no longer exists
	orphan, err := svc.IssueAccessToken("ghost", "ghost")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		prepare func()
	}{
		{name: "missing header", header: ""},
		{name: "malformed header", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "refresh token at access gate", header: "Bearer " + refresh},
		{name: "unknown user", header: "Bearer " + orphan},
		{
			name:   "revoked session",
			header: "Bearer " + access,
			prepare: func() {
				user.AccessTokenHash = nil
			},
		},
		{
			name:   "rotated session",
			header: "Bearer " + access,
			prepare: func() {
				stale := "$2a$04$unrelatedhashunrelatedhash"
				user.AccessTokenHash = &stale
			},
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})
	gate := AccessAuth(testLogger(), svc, users)(next)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepare != nil {
				tt.prepare()
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			gate.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestAccessAuth_StoreFailureIsNotRevocation(t *testing.T) {
	svc := testTokenService()
	users := &mockUserStorage{users: map[string]*models.User{}}
	_, access, _ := seedSession(t, svc, users)

	// a transient store outage must not tell the client to discard a live
	// session
	users.getErr = errors.New("database is locked")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	AccessAuth(testLogger(), svc, users)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRefreshAuth_Success(t *testing.T) {
	svc := testTokenService()
	users := &mockUserStorage{users: map[string]*models.User{}}
	_, _, refresh := seedSession(t, svc, users)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := handlers.GetUser(r.Context())
		require.True(t, ok)
		assert.Equal(t, "user-1", u.ID)

		raw, ok := handlers.GetRefreshToken(r.Context())
		require.True(t, ok)
		assert.Equal(t, refresh, raw)

		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()

	RefreshAuth(testLogger(), svc, users)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshAuth_AccessTokenRejected(t *testing.T) {
	svc := testTokenService()
	users := &mockUserStorage{users: map[string]*models.User{}}
	_, access, _ := seedSession(t, svc, users)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	RefreshAuth(testLogger(), svc, users)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshAuth_StoreFailureIsNotRevocation(t *testing.T) {
	svc := testTokenService()
	users := &mockUserStorage{users: map[string]*models.User{}}
	_, _, refresh := seedSession(t, svc, users)

	users.getErr = errors.New("database is locked")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()

	RefreshAuth(testLogger(), svc, users)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRefreshAuth_RotatedTokenRejected(t *testing.T) {
	svc := testTokenService()
	users := &mockUserStorage{users: map[string]*models.User{}}
	user, _, refresh := seedSession(t, svc, users)

	// rotation replaced the stored hash; the old raw token no longer matches
	newHash, err := svc.HashValue("some-newer-token")
	require.NoError(t, err)
	user.RefreshTokenHash = &newHash

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()

	RefreshAuth(testLogger(), svc, users)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
