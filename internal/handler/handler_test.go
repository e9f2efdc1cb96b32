package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrcms/internal/apperror"
	"hrcms/internal/auth"
	"hrcms/internal/config"
	handlers "hrcms/internal/handler"
	"hrcms/internal/middleware"
)

const testSecret = "test-secret-key"

type testEnv struct {
	posts      *MockPostService
	categories *MockCategoryService
	comments   *MockCommentService
	stats      *MockStatsService
	uploads    *MockUploadService
	store      *MockStore
	router     http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		posts:      new(MockPostService),
		categories: new(MockCategoryService),
		comments:   new(MockCommentService),
		stats:      new(MockStatsService),
		uploads:    new(MockUploadService),
		store:      new(MockStore),
	}

	cfg := &config.Config{
		Server: config.Server{MaxUploadSize: 1 << 20},
		Auth:   config.Auth{JWTSecretKey: testSecret, AdminRole: "admin"},
	}
	h := &handlers.Handlers{
		PostService:     env.posts,
		CategoryService: env.categories,
		CommentService:  env.comments,
		StatsService:    env.stats,
		UploadService:   env.uploads,
		Store:           env.store,
		Cfg:             cfg,
		Logger:          zap.NewNop(),
	}

	r := mux.NewRouter()
	h.Routes(r, middleware.RequireAdmin)
	env.router = middleware.Chain(r, middleware.Authenticate(auth.NewVerifier(testSecret, "admin")))
	return env
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"email":   "editor@example.com",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// decodeBody checks the JSON content type and returns the decoded envelope.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func assertFail(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) map[string]any {
	t.Helper()
	assert.Equal(t, expectedStatus, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, "fail", body["status"])
	assert.Contains(t, body["message"], expectedMessage)
	return body
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/blog/posts/stats", nil, "")
	assertFail(t, rr, http.StatusUnauthorized, "authentication required")

	rr = env.do(t, http.MethodGet, "/api/blog/posts/stats", nil, signToken(t, "reader"))
	assertFail(t, rr, http.StatusForbidden, "admin access required")

	env.stats.AssertNotCalled(t, "PostStats", mock.Anything)
}

func TestAuthenticate_RejectsBadToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/blog/posts", nil, "not-a-jwt")

	assertFail(t, rr, http.StatusUnauthorized, "invalid or expired token")
	env.posts.AssertNotCalled(t, "ListPosts", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/blog/nothing/here/at/all", nil, "")

	assertFail(t, rr, http.StatusNotFound, "route not found")
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()

	status := handlers.WriteError(rr, errors.New("pq: password authentication failed for user blog"))

	assert.Equal(t, http.StatusInternalServerError, status)
	body := decodeBody(t, rr)
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, body["message"], "password")
}

func TestWriteError_ValidationFields(t *testing.T) {
	rr := httptest.NewRecorder()

	handlers.WriteError(rr, apperror.Validation("invalid post",
		apperror.FieldError{Field: "title", Message: "is required"}))

	body := assertFail(t, rr, http.StatusBadRequest, "invalid post")
	fields := body["errors"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "title", fields[0].(map[string]any)["field"])
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)
	env.store.On("HealthCheck", mock.Anything).Return(nil).Once()
	env.store.On("HealthCheck", mock.Anything).Return(errors.New("server selection timeout")).Once()

	rr := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])

	rr = env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, "mongodb", body["database"])
}
