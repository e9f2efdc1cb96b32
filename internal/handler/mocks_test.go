package handlers_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"hrcms/internal/auth"
	"hrcms/internal/models"
	"hrcms/internal/service"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) ListPosts(ctx context.Context, principal auth.Principal, params service.ListPostsParams) ([]models.Post, models.Pagination, error) {
	args := m.Called(ctx, principal, params)
	if args.Get(0) == nil {
		return nil, models.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]models.Post), args.Get(1).(models.Pagination), args.Error(2)
}

func (m *MockPostService) GetPost(ctx context.Context, slugOrID string) (*models.Post, []models.Comment, error) {
	args := m.Called(ctx, slugOrID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Post), args.Get(1).([]models.Comment), args.Error(2)
}

func (m *MockPostService) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) PopularPosts(ctx context.Context, limit int) ([]models.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) UpdatePost(ctx context.Context, postID string, input models.PostInput) (*models.Post, error) {
	args := m.Called(ctx, postID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) DeletePost(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostService) LikePost(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostService) UnlikePost(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) ListCategories(ctx context.Context, activeOnly bool) ([]models.CategoryWithCount, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryWithCount), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, categoryID string, input models.CategoryInput) (*models.Category, error) {
	args := m.Called(ctx, categoryID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) CreateComment(ctx context.Context, input models.CommentInput, meta models.RequestMeta) (*models.Comment, error) {
	args := m.Called(ctx, input, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) ListComments(ctx context.Context, params service.CommentListParams) ([]models.Comment, models.Pagination, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, models.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(models.Pagination), args.Error(2)
}

func (m *MockCommentService) ListPostComments(ctx context.Context, postID string, page, limit int) ([]models.Comment, models.Pagination, error) {
	args := m.Called(ctx, postID, page, limit)
	if args.Get(0) == nil {
		return nil, models.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(models.Pagination), args.Error(2)
}

func (m *MockCommentService) UpdateCommentStatus(ctx context.Context, commentID string, status models.CommentStatus) (*models.Comment, error) {
	args := m.Called(ctx, commentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) BulkUpdateStatus(ctx context.Context, commentIDs []string, status models.CommentStatus) (int64, error) {
	args := m.Called(ctx, commentIDs, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentService) LikeComment(ctx context.Context, commentID string) (int64, error) {
	args := m.Called(ctx, commentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentService) DeleteComment(ctx context.Context, commentID string) error {
	args := m.Called(ctx, commentID)
	return args.Error(0)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) PostStats(ctx context.Context) (*models.PostStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostStats), args.Error(1)
}

type MockUploadService struct {
	mock.Mock
	received []byte
}

func (m *MockUploadService) UploadImage(ctx context.Context, file io.Reader, size int64, fileName string) (*models.UploadResult, error) {
	m.received, _ = io.ReadAll(file)
	args := m.Called(ctx, size, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadResult), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Name() string {
	return "mongodb"
}

func (m *MockStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close(ctx context.Context) error {
	return nil
}
