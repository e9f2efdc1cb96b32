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
	"hrcms/internal/validation"
)

// CommentListParams filters the moderation listing.
type CommentListParams struct {
	Page   int
	Limit  int
	Status models.CommentStatus
	PostID string
}

type CommentService interface {
	CreateComment(ctx context.Context, input models.CommentInput, meta models.RequestMeta) (*models.Comment, error)
	ListComments(ctx context.Context, params CommentListParams) ([]models.Comment, models.Pagination, error)
	ListPostComments(ctx context.Context, postID string, page, limit int) ([]models.Comment, models.Pagination, error)
	UpdateCommentStatus(ctx context.Context, commentID string, status models.CommentStatus) (*models.Comment, error)
	BulkUpdateStatus(ctx context.Context, commentIDs []string, status models.CommentStatus) (int64, error)
	LikeComment(ctx context.Context, commentID string) (int64, error)
	DeleteComment(ctx context.Context, commentID string) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	validate *validation.Validator
	sanitize *validation.Sanitizer
	logger   *zap.Logger
	now      func() time.Time
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	validate *validation.Validator,
	sanitize *validation.Sanitizer,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		comments: comments,
		posts:    posts,
		validate: validate,
		sanitize: sanitize,
		logger:   logger.Named("comment"),
		now:      utcNow,
	}
}

func (s *commentService) CreateComment(ctx context.Context, input models.CommentInput, meta models.RequestMeta) (*models.Comment, error) {
	now := s.now()
	comment := &models.Comment{
		PostID:    strings.TrimSpace(input.Post),
		Author:    models.CommentAuthor{Name: s.sanitize.Text(input.Author.Name)},
		Content:   s.sanitize.Text(input.Content),
		Status:    models.CommentVisible,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.ParentComment != nil && strings.TrimSpace(*input.ParentComment) != "" {
		parent := strings.TrimSpace(*input.ParentComment)
		comment.ParentComment = &parent
	}

	if err := s.validate.Struct(comment, "invalid comment"); err != nil {
		return nil, err
	}

	if _, err := s.posts.GetByID(ctx, comment.PostID); err != nil {
		return nil, notFoundAs(err, "post not found")
	}

	if comment.ParentComment != nil {
		parent, err := s.comments.GetByID(ctx, *comment.ParentComment)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Validation("invalid comment",
					apperror.FieldError{Field: "parentComment", Message: "does not exist"})
			}
			return nil, errors.Wrap(err, "get parent comment")
		}
		if parent.PostID != comment.PostID {
			return nil, apperror.Validation("invalid comment",
				apperror.FieldError{Field: "parentComment", Message: "must belong to the same post"})
		}
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, errors.Wrap(err, "create comment")
	}

	if err := s.posts.IncrementComments(ctx, comment.PostID); err != nil {
		s.logger.Error("comment saved but post counter not updated",
			zap.String("comment_id", comment.ID),
			zap.String("post_id", comment.PostID),
			zap.Error(err))
		return nil, errors.Wrap(err, "increment post comments")
	}

	return comment, nil
}

func (s *commentService) list(ctx context.Context, q models.CommentQuery, page, limit int) ([]models.Comment, models.Pagination, error) {
	q.Skip = (page - 1) * limit
	q.Limit = limit

	comments, total, err := s.comments.List(ctx, q)
	if err != nil {
		return nil, models.Pagination{}, errors.Wrap(err, "list comments")
	}
	return comments, models.NewPagination(page, limit, total), nil
}

func (s *commentService) ListComments(ctx context.Context, params CommentListParams) ([]models.Comment, models.Pagination, error) {
	q := models.CommentQuery{PostID: params.PostID}
	if params.Status.Valid() {
		q.Status = params.Status
	}
	return s.list(ctx, q, params.Page, params.Limit)
}

func (s *commentService) ListPostComments(ctx context.Context, postID string, page, limit int) ([]models.Comment, models.Pagination, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, models.Pagination{}, notFoundAs(err, "post not found")
	}

	comments, pagination, err := s.list(ctx, models.CommentQuery{
		PostID:       postID,
		Status:       models.CommentVisible,
		TopLevelOnly: true,
	}, page, limit)
	if err != nil {
		return nil, pagination, err
	}

	for i := range comments {
		comments[i] = comments[i].Public()
	}
	return comments, pagination, nil
}

func invalidStatus() error {
	return apperror.Validation("invalid status",
		apperror.FieldError{Field: "status", Message: "must be one of: visible hidden"})
}

func (s *commentService) UpdateCommentStatus(ctx context.Context, commentID string, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, invalidStatus()
	}

	comment, err := s.comments.UpdateStatus(ctx, commentID, status)
	if err != nil {
		return nil, notFoundAs(err, "comment not found")
	}

	s.logger.Info("comment moderated", zap.String("comment_id", commentID), zap.String("status", string(status)))
	return comment, nil
}

func (s *commentService) BulkUpdateStatus(ctx context.Context, commentIDs []string, status models.CommentStatus) (int64, error) {
	if len(commentIDs) == 0 {
		return 0, apperror.Validation("comment ids are required",
			apperror.FieldError{Field: "commentIds", Message: "must not be empty"})
	}
	if !status.Valid() {
		return 0, invalidStatus()
	}

	updated, err := s.comments.BulkUpdateStatus(ctx, commentIDs, status)
	if err != nil {
		return 0, errors.Wrap(err, "bulk update comments")
	}

	s.logger.Info("comments moderated in bulk",
		zap.Int("requested", len(commentIDs)),
		zap.Int64("updated", updated),
		zap.String("status", string(status)))
	return updated, nil
}

func (s *commentService) LikeComment(ctx context.Context, commentID string) (int64, error) {
	likes, err := s.comments.IncrementLikes(ctx, commentID)
	if err != nil {
		return 0, notFoundAs(err, "comment not found")
	}
	return likes, nil
}

func (s *commentService) DeleteComment(ctx context.Context, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return notFoundAs(err, "comment not found")
	}

	if err = s.comments.Delete(ctx, commentID); err != nil {
		return notFoundAs(err, "comment not found")
	}
	if err = s.posts.DecrementComments(ctx, comment.PostID); err != nil {
		return errors.Wrap(err, "decrement post comments")
	}

	s.logger.Info("comment deleted", zap.String("comment_id", commentID), zap.String("post_id", comment.PostID))
	return nil
}
