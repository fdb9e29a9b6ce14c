package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/auth-service/internal/events"
	"github.com/magabrotheeeer/auth-service/internal/lib/jwt"
	"github.com/magabrotheeeer/auth-service/internal/models"
	authservice "github.com/magabrotheeeer/auth-service/internal/services/auth"
	"github.com/magabrotheeeer/auth-service/internal/storage"
)

// memoryStore — хранилище пользователей в памяти с теми же ошибками, что и storage.
type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  []models.User
}

func (s *memoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (s *memoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (s *memoryStore) FindUsersByUsernameOrEmail(_ context.Context, username, email string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []models.User
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			found = append(found, u)
		}
	}
	return found, nil
}

func (s *memoryStore) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, storage.ErrUserExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	s.users = append(s.users, user)
	return &user, nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *memoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memoryStore{}
	jwtMaker := jwt.NewJWTMaker("routes-test-secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, Deps{
		Logger:   logger,
		Service:  authservice.NewAuthService(store, jwtMaker, events.Noop{}, logger),
		Users:    store,
		JWTMaker: jwtMaker,
		Registry: prometheus.NewRegistry(),
	})
	return r, store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var got map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	}
	return rec, got
}

func TestRoutes_RegisterLoginProfile(t *testing.T) {
	h, store := newTestRouter(t)

	alice := map[string]string{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "Secret123!",
		"fullName": "Alice A",
	}

	rec, got := doJSON(t, h, http.MethodPost, "/auth/register", alice, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), got["id"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "Alice A", got["fullName"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, rec.Body.String(), store.users[0].PasswordHash)
	assert.NotEqual(t, "Secret123!", store.users[0].PasswordHash)

	rec, got = doJSON(t, h, http.MethodPost, "/auth/register", alice, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Error", got["status"])

	sameEmail := map[string]string{
		"username": "alice2",
		"email":    "alice@x.com",
		"password": "Secret123!",
		"fullName": "Alice B",
	}
	rec, _ = doJSON(t, h, http.MethodPost, "/auth/register", sameEmail, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, got = doJSON(t, h, http.MethodPost, "/auth/login",
		map[string]string{"email": "alice@x.com", "password": "Secret123!"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, ok := got["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	rec, got = doJSON(t, h, http.MethodGet, "/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), got["id"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "alice@x.com", got["email"])
	assert.NotContains(t, got, "password")
}

func TestRoutes_Rejections(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, _ := doJSON(t, h, http.MethodPost, "/auth/register", map[string]string{
		"username": "bob",
		"email":    "bob@x.com",
		"password": "Secret123!",
		"fullName": "Bob B",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		token    string
		wantCode int
	}{
		{
			name:     "invalid email on register",
			method:   http.MethodPost,
			path:     "/auth/register",
			body:     map[string]string{"username": "x", "email": "invalid-email", "password": "Secret123!", "fullName": "X"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "weak password on register",
			method:   http.MethodPost,
			path:     "/auth/register",
			body:     map[string]string{"username": "x", "email": "x@x.com", "password": "123", "fullName": "X"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "password longer than bcrypt limit",
			method:   http.MethodPost,
			path:     "/auth/register",
			body:     map[string]string{"username": "long", "email": "long@x.com", "password": "Aa1!" + strings.Repeat("x", 76), "fullName": "Long"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/auth/login",
			body:     map[string]string{"email": "bob@x.com", "password": "Wrong123!"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     "/auth/login",
			body:     map[string]string{"email": "ghost@x.com", "password": "Secret123!"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "profile without token",
			method:   http.MethodGet,
			path:     "/auth/profile",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "profile with garbage token",
			method:   http.MethodGet,
			path:     "/auth/profile",
			token:    "invalid-token",
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, got := doJSON(t, h, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "Error", got["status"])
		})
	}
}

func TestRoutes_ExpiredToken(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, _ := doJSON(t, h, http.MethodPost, "/auth/register", map[string]string{
		"username": "carol",
		"email":    "carol@x.com",
		"password": "Secret123!",
		"fullName": "Carol C",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	expired, err := jwt.NewJWTMaker("routes-test-secret", -time.Minute).GenerateToken(1)
	require.NoError(t, err)

	rec, _ = doJSON(t, h, http.MethodGet, "/auth/profile", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, got := doJSON(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", got["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	h.ServeHTTP(mrec, req)

	assert.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), `auth_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
