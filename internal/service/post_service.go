package service

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"hrcms/internal/apperror"
	"hrcms/internal/auth"
	"hrcms/internal/models"
	"hrcms/internal/repository"
	"hrcms/internal/slug"
	"hrcms/internal/validation"
)

const (
	maxSlugAttempts   = 100
	maxInsertRetries  = 5
	postCommentsLimit = 50
)

type PostService interface {
	ListPosts(ctx context.Context, principal auth.Principal, params ListPostsParams) ([]models.Post, models.Pagination, error)
	// GetPost counts a view and returns the post with its visible top level comments.
	GetPost(ctx context.Context, slugOrID string) (*models.Post, []models.Comment, error)
	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	PopularPosts(ctx context.Context, limit int) ([]models.Post, error)
	CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, postID string, input models.PostInput) (*models.Post, error)
	// DeletePost removes the post and its comments, returning how many comments went with it.
	DeletePost(ctx context.Context, postID string) (int64, error)
	LikePost(ctx context.Context, postID string) (int64, error)
	UnlikePost(ctx context.Context, postID string) (int64, error)
}

type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
	validate   *validation.Validator
	sanitize   *validation.Sanitizer
	logger     *zap.Logger
	now        func() time.Time
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	comments repository.CommentRepository,
	validate *validation.Validator,
	sanitize *validation.Sanitizer,
	logger *zap.Logger,
) PostService {
	return &postService{
		posts:      posts,
		categories: categories,
		comments:   comments,
		validate:   validate,
		sanitize:   sanitize,
		logger:     logger.Named("post"),
		now:        utcNow,
	}
}

func (s *postService) ListPosts(ctx context.Context, principal auth.Principal, params ListPostsParams) ([]models.Post, models.Pagination, error) {
	posts, total, err := s.posts.List(ctx, BuildPostQuery(params, principal))
	if err != nil {
		return nil, models.Pagination{}, errors.Wrap(err, "list posts")
	}
	return posts, models.NewPagination(params.Page, params.Limit, total), nil
}

func (s *postService) GetPost(ctx context.Context, slugOrID string) (*models.Post, []models.Comment, error) {
	post, err := s.posts.IncrementViews(ctx, slugOrID)
	if err != nil {
		return nil, nil, notFoundAs(err, "post not found")
	}

	comments, _, err := s.comments.List(ctx, models.CommentQuery{
		PostID:       post.ID,
		Status:       models.CommentVisible,
		TopLevelOnly: true,
		Limit:        postCommentsLimit,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "list post comments")
	}

	for i := range comments {
		comments[i] = comments[i].Public()
	}
	return post, comments, nil
}

func (s *postService) feed(ctx context.Context, limit int, sort models.PostSort) ([]models.Post, error) {
	posts, _, err := s.posts.List(ctx, models.PostQuery{
		Status:         models.PostPublished,
		Sort:           sort,
		Limit:          clamp(limit, 1, MaxFeedLimit),
		ExcludeContent: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s posts", sort)
	}
	return posts, nil
}

func (s *postService) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	return s.feed(ctx, limit, models.SortLatest)
}

func (s *postService) PopularPosts(ctx context.Context, limit int) ([]models.Post, error) {
	return s.feed(ctx, limit, models.SortViews)
}

// applyPostInput copies the fields present in input onto post.
func (s *postService) applyPostInput(post *models.Post, input models.PostInput) {
	if input.Title != nil {
		post.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		post.Content = s.sanitize.HTML(*input.Content)
	}
	if input.Excerpt != nil {
		post.Excerpt = s.sanitize.Text(*input.Excerpt)
	}
	if input.Category != nil {
		post.Category = models.CategoryRef{ID: strings.TrimSpace(*input.Category)}
	}
	if input.Tags != nil {
		post.Tags = validation.Tags(input.Tags)
	}
	if input.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*input.FeaturedImage)
	}
	if input.Status != nil {
		post.Status = *input.Status
	}
	if input.MetaTitle != nil {
		post.MetaTitle = strings.TrimSpace(*input.MetaTitle)
	}
	if input.MetaDescription != nil {
		post.MetaDescription = strings.TrimSpace(*input.MetaDescription)
	}
}

func (s *postService) ensureCategory(ctx context.Context, categoryID string) error {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return notFoundAs(err, "category not found")
	}
	return nil
}

// uniqueSlug returns base, or base-2, base-3 and so on, whichever is free first.
func uniqueSlug(ctx context.Context, exists func(context.Context, string, string) (bool, error), base, excludeID string) (string, error) {
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", errors.Wrap(err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperror.Conflict("could not find a free slug for " + base)
}

// save assigns a free slug and writes the post, retrying when a concurrent
// writer claims the same slug first.
func (s *postService) save(ctx context.Context, post *models.Post, regenerateSlug bool, write func(context.Context, *models.Post) error) error {
	for attempt := 0; attempt < maxInsertRetries; attempt++ {
		if regenerateSlug {
			free, err := uniqueSlug(ctx, s.posts.SlugExists, slug.MakeOr(post.Title, slug.Fallback), post.ID)
			if err != nil {
				return err
			}
			post.Slug = free
		}

		err := write(ctx, post)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperror.ErrDuplicate) || !regenerateSlug {
			return notFoundAs(err, "post not found")
		}
		s.logger.Warn("slug taken concurrently, retrying", zap.String("slug", post.Slug))
	}
	return apperror.Conflict("post with this slug already exists")
}

// stampPublished sets publishedAt the first time a post is published.
func (s *postService) stampPublished(post *models.Post, now time.Time) {
	if post.Status == models.PostPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
}

func (s *postService) CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error) {
	now := s.now()
	post := &models.Post{
		Status:    models.PostDraft,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.applyPostInput(post, input)

	if err := s.validate.Struct(post, "invalid post"); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, post.Category.ID); err != nil {
		return nil, err
	}
	s.stampPublished(post, now)

	if err := s.save(ctx, post, true, s.posts.Create); err != nil {
		return nil, errors.Wrap(err, "create post")
	}

	s.logger.Info("post created",
		zap.String("post_id", post.ID),
		zap.String("slug", post.Slug),
		zap.String("status", string(post.Status)))
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, postID string, input models.PostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundAs(err, "post not found")
	}

	oldTitle, oldCategory := post.Title, post.Category.ID
	s.applyPostInput(post, input)

	if err = s.validate.Struct(post, "invalid post"); err != nil {
		return nil, err
	}
	if post.Category.ID != oldCategory {
		if err = s.ensureCategory(ctx, post.Category.ID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	s.stampPublished(post, now)
	post.UpdatedAt = now

	if err = s.save(ctx, post, post.Title != oldTitle, s.posts.Update); err != nil {
		return nil, errors.Wrap(err, "update post")
	}

	s.logger.Info("post updated", zap.String("post_id", post.ID))
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, postID string) (int64, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return 0, notFoundAs(err, "post not found")
	}

	removed, err := s.comments.DeleteByPost(ctx, postID)
	if err != nil {
		return 0, errors.Wrap(err, "delete post comments")
	}
	if err = s.posts.Delete(ctx, postID); err != nil {
		return 0, notFoundAs(err, "post not found")
	}

	s.logger.Info("post deleted",
		zap.String("post_id", postID),
		zap.Int64("comments_removed", removed))
	return removed, nil
}

func (s *postService) LikePost(ctx context.Context, postID string) (int64, error) {
	likes, err := s.posts.IncrementLikes(ctx, postID)
	if err != nil {
		return 0, notFoundAs(err, "post not found")
	}
	return likes, nil
}

func (s *postService) UnlikePost(ctx context.Context, postID string) (int64, error) {
	likes, err := s.posts.DecrementLikes(ctx, postID)
	if err != nil {
		return 0, notFoundAs(err, "post not found")
	}
	return likes, nil
}
