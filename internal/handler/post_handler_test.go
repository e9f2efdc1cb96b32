package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hrcms/internal/apperror"
	"hrcms/internal/auth"
	"hrcms/internal/models"
	"hrcms/internal/service"
)

func TestGetPosts_Anonymous(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	params := service.ListPostsParams{Page: 2, Limit: 5, Status: "draft", Sort: models.SortLatest}
	env.posts.On("ListPosts", mock.Anything, auth.Anonymous, params).
		Return([]models.Post{{ID: "p1", Title: "HR Strategy 2024"}}, models.NewPagination(2, 5, 6), nil)

	// Act
	rr := env.do(t, http.MethodGet, "/api/blog/posts?page=2&limit=5&status=draft&sort=latest", nil, "")

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["results"])

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["current"])
	assert.Equal(t, float64(2), pagination["pages"])
	assert.Equal(t, true, pagination["hasPrev"])

	posts := body["data"].(map[string]any)["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "HR Strategy 2024", posts[0].(map[string]any)["title"])
}

func TestGetPosts_AdminPrincipalPassedThrough(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("ListPosts", mock.Anything, mock.MatchedBy(func(p auth.Principal) bool {
		return p.IsAdmin() && p.UserID == "user-1"
	}), mock.Anything).Return(nil, models.NewPagination(1, 10, 0), nil)

	rr := env.do(t, http.MethodGet, "/api/blog/posts", nil, signToken(t, "admin"))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, []any{}, body["data"].(map[string]any)["posts"])
}

func TestGetRecentAndPopular_NotCapturedBySlug(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("RecentPosts", mock.Anything, service.DefaultFeedLimit).Return([]models.Post{{ID: "r"}}, nil)
	env.posts.On("PopularPosts", mock.Anything, 3).Return([]models.Post{{ID: "p"}}, nil)

	rr := env.do(t, http.MethodGet, "/api/blog/posts/recent", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/blog/posts/popular?limit=3", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	env.posts.AssertNotCalled(t, "GetPost", mock.Anything, mock.Anything)
}

func TestGetPost_BySlug(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("GetPost", mock.Anything, "future-of-hr").
		Return(&models.Post{ID: "p1", Slug: "future-of-hr", Views: 1}, []models.Comment{}, nil)

	rr := env.do(t, http.MethodGet, "/api/blog/posts/future-of-hr", nil, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["post"].(map[string]any)["views"])
	assert.Equal(t, []any{}, data["comments"])
}

func TestGetPost_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("GetPost", mock.Anything, "missing").Return(nil, nil, apperror.NotFound("post not found"))

	rr := env.do(t, http.MethodGet, "/api/blog/posts/missing", nil, "")

	assertFail(t, rr, http.StatusNotFound, "post not found")
}

func TestGetPostStats_Admin(t *testing.T) {
	env := newTestEnv(t)
	env.stats.On("PostStats", mock.Anything).Return(&models.PostStats{
		Posts: models.PostStatusCounts{Total: 2, Published: 2},
	}, nil)

	rr := env.do(t, http.MethodGet, "/api/blog/posts/stats", nil, signToken(t, "admin"))

	assert.Equal(t, http.StatusOK, rr.Code)
	stats := decodeBody(t, rr)["data"].(map[string]any)["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["posts"].(map[string]any)["published"])
}

func TestCreatePost_Success(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	title, content, category := "HR Strategy 2024", "<p>plan</p>", "cat-1"
	env.posts.On("CreatePost", mock.Anything, models.PostInput{
		Title:    &title,
		Content:  &content,
		Category: &category,
	}).Return(&models.Post{ID: "p1", Title: title, Slug: "hr-strategy-2024", Status: models.PostDraft}, nil)

	// Act
	rr := env.do(t, http.MethodPost, "/api/blog/posts", map[string]any{
		"title":    title,
		"content":  content,
		"category": category,
	}, signToken(t, "admin"))

	// Assert
	assert.Equal(t, http.StatusCreated, rr.Code)
	post := decodeBody(t, rr)["data"].(map[string]any)["post"].(map[string]any)
	assert.Equal(t, "hr-strategy-2024", post["slug"])
	assert.Equal(t, float64(0), post["views"])
}

func TestCreatePost_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/blog/posts", "{not json", signToken(t, "admin"))

	assertFail(t, rr, http.StatusBadRequest, "invalid request body")
	env.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestCreatePost_ValidationError(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("CreatePost", mock.Anything, mock.Anything).Return(nil, apperror.Validation("invalid post",
		apperror.FieldError{Field: "title", Message: "is required"}))

	rr := env.do(t, http.MethodPost, "/api/blog/posts", map[string]any{"content": "x"}, signToken(t, "admin"))

	body := assertFail(t, rr, http.StatusBadRequest, "invalid post")
	assert.Len(t, body["errors"], 1)
}

func TestCreatePost_InternalError(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("CreatePost", mock.Anything, mock.Anything).Return(nil, errors.New("mongo: connection refused"))

	rr := env.do(t, http.MethodPost, "/api/blog/posts", map[string]any{"title": "x"}, signToken(t, "admin"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, body["message"], "mongo")
}

func TestUpdatePost(t *testing.T) {
	env := newTestEnv(t)
	status := models.PostPublished
	env.posts.On("UpdatePost", mock.Anything, "p1", models.PostInput{Status: &status}).
		Return(&models.Post{ID: "p1", Status: status}, nil)

	rr := env.do(t, http.MethodPatch, "/api/blog/posts/p1", map[string]any{"status": "published"}, signToken(t, "admin"))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("DeletePost", mock.Anything, "p1").Return(int64(4), nil)

	rr := env.do(t, http.MethodDelete, "/api/blog/posts/p1", nil, signToken(t, "admin"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(4), decodeBody(t, rr)["data"].(map[string]any)["deletedComments"])
}

func TestLikeAndUnlikePost_Public(t *testing.T) {
	env := newTestEnv(t)
	env.posts.On("LikePost", mock.Anything, "p1").Return(int64(1), nil)
	env.posts.On("UnlikePost", mock.Anything, "p1").Return(int64(0), nil)

	rr := env.do(t, http.MethodPatch, "/api/blog/posts/p1/like", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), decodeBody(t, rr)["data"].(map[string]any)["likes"])

	rr = env.do(t, http.MethodPatch, "/api/blog/posts/p1/unlike", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), decodeBody(t, rr)["data"].(map[string]any)["likes"])
}

func TestGetPostComments(t *testing.T) {
	env := newTestEnv(t)
	env.comments.On("ListPostComments", mock.Anything, "p1", 1, 10).
		Return([]models.Comment{{ID: "c1", PostID: "p1"}}, models.NewPagination(1, 10, 1), nil)

	rr := env.do(t, http.MethodGet, "/api/blog/posts/p1/comments", nil, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(1), body["results"])
	env.posts.AssertNotCalled(t, "GetPost", mock.Anything, mock.Anything)
}
