package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrcms/internal/apperror"
	"hrcms/internal/models"
	"hrcms/internal/validation"
)

func newTestCategoryService() (*categoryService, *MockCategoryRepository, *MockPostRepository) {
	categories := new(MockCategoryRepository)
	posts := new(MockPostRepository)

	svc := NewCategoryService(categories, posts, validation.New(), zap.NewNop()).(*categoryService)
	svc.now = func() time.Time { return fixedNow }
	return svc, categories, posts
}

func TestCreateCategory_Defaults(t *testing.T) {
	svc, categories, _ := newTestCategoryService()
	ctx := context.Background()

	categories.On("SlugExists", ctx, "talent-acquisition", "").Return(false, nil)
	categories.On("Create", ctx, mock.AnythingOfType("*models.Category")).Return(nil)

	category, err := svc.CreateCategory(ctx, models.CategoryInput{Name: ptr("  Talent Acquisition ")})

	require.NoError(t, err)
	assert.Equal(t, "Talent Acquisition", category.Name)
	assert.Equal(t, "talent-acquisition", category.Slug)
	assert.Equal(t, models.DefaultCategoryColor, category.Color)
	assert.True(t, category.IsActive)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	svc, categories, _ := newTestCategoryService()
	ctx := context.Background()

	categories.On("SlugExists", ctx, "payroll", "").Return(true, nil)

	_, err := svc.CreateCategory(ctx, models.CategoryInput{Name: ptr("Payroll")})

	assertKind(t, err, apperror.KindConflict)
	assert.Equal(t, http.StatusConflict, apperror.HTTPStatus(err))
	categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCategory_DuplicateOnInsert(t *testing.T) {
	svc, categories, _ := newTestCategoryService()
	ctx := context.Background()

	categories.On("SlugExists", ctx, "payroll", "").Return(false, nil)
	categories.On("Create", ctx, mock.AnythingOfType("*models.Category")).Return(apperror.ErrDuplicate)

	_, err := svc.CreateCategory(ctx, models.CategoryInput{Name: ptr("Payroll")})

	assertKind(t, err, apperror.KindConflict)
}

func TestCreateCategory_InvalidColor(t *testing.T) {
	svc, _, _ := newTestCategoryService()

	_, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: ptr("Payroll"), Color: ptr("blue")})

	appErr := assertKind(t, err, apperror.KindValidation)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "color", appErr.Fields[0].Field)
}

func TestUpdateCategory_RenameChecksSlug(t *testing.T) {
	svc, categories, _ := newTestCategoryService()
	ctx := context.Background()

	categories.On("GetByID", ctx, "c1").Return(&models.Category{ID: "c1", Name: "HR", Slug: "hr", Color: "#000000", IsActive: true}, nil)
	categories.On("SlugExists", ctx, "people-ops", "c1").Return(false, nil)
	categories.On("Update", ctx, mock.AnythingOfType("*models.Category")).Return(nil)

	category, err := svc.UpdateCategory(ctx, "c1", models.CategoryInput{Name: ptr("People Ops"), IsActive: ptr(false)})

	require.NoError(t, err)
	assert.Equal(t, "people-ops", category.Slug)
	assert.False(t, category.IsActive)
	assert.Equal(t, "#000000", category.Color)
}

func TestDeleteCategory_RefusedWhenPostsExist(t *testing.T) {
	// Arrange
	svc, categories, posts := newTestCategoryService()
	ctx := context.Background()

	categories.On("GetByID", ctx, "c1").Return(&models.Category{ID: "c1"}, nil)
	posts.On("CountByCategory", ctx, "c1").Return(int64(2), nil)

	// Act
	err := svc.DeleteCategory(ctx, "c1")

	// Assert
	appErr := assertKind(t, err, apperror.KindIntegrity)
	assert.Equal(t, "cannot delete category that has posts", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, apperror.HTTPStatus(err))
	categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteCategory_Success(t *testing.T) {
	svc, categories, posts := newTestCategoryService()
	ctx := context.Background()

	categories.On("GetByID", ctx, "c1").Return(&models.Category{ID: "c1"}, nil)
	posts.On("CountByCategory", ctx, "c1").Return(int64(0), nil)
	categories.On("Delete", ctx, "c1").Return(nil)

	require.NoError(t, svc.DeleteCategory(ctx, "c1"))
	categories.AssertExpectations(t)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	svc, categories, posts := newTestCategoryService()
	ctx := context.Background()

	categories.On("GetByID", ctx, "zzz").Return(nil, apperror.ErrNotFound)

	err := svc.DeleteCategory(ctx, "zzz")

	assertKind(t, err, apperror.KindNotFound)
	posts.AssertNotCalled(t, "CountByCategory", mock.Anything, mock.Anything)
}

func TestListCategories(t *testing.T) {
	svc, categories, _ := newTestCategoryService()
	ctx := context.Background()

	want := []models.CategoryWithCount{{Category: models.Category{ID: "c1", Name: "HR"}, PostCount: 4}}
	categories.On("ListWithCounts", ctx, true).Return(want, nil)

	got, err := svc.ListCategories(ctx, true)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
