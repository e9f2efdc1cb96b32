package service

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"hrcms/internal/apperror"
	"hrcms/internal/models"
	"hrcms/internal/repository"
	"hrcms/internal/slug"
	"hrcms/internal/validation"
)

const categoryExistsMessage = "category with this name already exists"

type CategoryService interface {
	// ListCategories returns categories by name with their post counts. The
	// public listing (activeOnly) hides inactive categories and counts published posts only.
	ListCategories(ctx context.Context, activeOnly bool) ([]models.CategoryWithCount, error)
	CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, input models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

type categoryService struct {
	categories repository.CategoryRepository
	posts      repository.PostRepository
	validate   *validation.Validator
	logger     *zap.Logger
	now        func() time.Time
}

func NewCategoryService(
	categories repository.CategoryRepository,
	posts repository.PostRepository,
	validate *validation.Validator,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		categories: categories,
		posts:      posts,
		validate:   validate,
		logger:     logger.Named("category"),
		now:        utcNow,
	}
}

func (s *categoryService) ListCategories(ctx context.Context, activeOnly bool) ([]models.CategoryWithCount, error) {
	categories, err := s.categories.ListWithCounts(ctx, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func applyCategoryInput(c *models.Category, input models.CategoryInput) {
	if input.Name != nil {
		c.Name = strings.TrimSpace(*input.Name)
	}
	if input.Color != nil {
		c.Color = strings.TrimSpace(*input.Color)
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	if input.Description != nil {
		c.Description = strings.TrimSpace(*input.Description)
	}
}

// assignSlug derives the slug from the name and refuses names whose slug
// another category already uses.
func (s *categoryService) assignSlug(ctx context.Context, c *models.Category) error {
	c.Slug = slug.MakeOr(c.Name, "category")

	taken, err := s.categories.SlugExists(ctx, c.Slug, c.ID)
	if err != nil {
		return errors.Wrap(err, "check category slug")
	}
	if taken {
		return apperror.Conflict(categoryExistsMessage)
	}
	return nil
}

func duplicateAsConflict(err error) error {
	if errors.Is(err, apperror.ErrDuplicate) {
		return apperror.Conflict(categoryExistsMessage)
	}
	return notFoundAs(err, "category not found")
}

func (s *categoryService) CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error) {
	now := s.now()
	category := &models.Category{
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCategoryInput(category, input)
	if category.Color == "" {
		category.Color = models.DefaultCategoryColor
	}

	if err := s.validate.Struct(category, "invalid category"); err != nil {
		return nil, err
	}
	if err := s.assignSlug(ctx, category); err != nil {
		return nil, err
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, duplicateAsConflict(err)
	}

	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, input models.CategoryInput) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, notFoundAs(err, "category not found")
	}

	oldName := category.Name
	applyCategoryInput(category, input)
	if category.Color == "" {
		category.Color = models.DefaultCategoryColor
	}

	if err = s.validate.Struct(category, "invalid category"); err != nil {
		return nil, err
	}
	if category.Name != oldName {
		if err = s.assignSlug(ctx, category); err != nil {
			return nil, err
		}
	}
	category.UpdatedAt = s.now()

	if err = s.categories.Update(ctx, category); err != nil {
		return nil, duplicateAsConflict(err)
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return notFoundAs(err, "category not found")
	}

	inUse, err := s.posts.CountByCategory(ctx, categoryID)
	if err != nil {
		return errors.Wrap(err, "count category posts")
	}
	if inUse > 0 {
		return apperror.Integrity("cannot delete category that has posts")
	}

	if err = s.categories.Delete(ctx, categoryID); err != nil {
		return notFoundAs(err, "category not found")
	}

	s.logger.Info("category deleted", zap.String("category_id", categoryID))
	return nil
}
