package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"

	"hrcms/internal/models"
	"hrcms/internal/repository/mongodb"
	"hrcms/internal/repository/postgres"
)

type PostRepository interface {
	// Create assigns the post an ID. A taken slug yields apperror.ErrDuplicate.
	Create(ctx context.Context, post *models.Post) error
	// Update overwrites the editable fields of an existing post.
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, query models.PostQuery) ([]models.Post, int64, error)
	Delete(ctx context.Context, postID string) error
	CountByCategory(ctx context.Context, categoryID string) (int64, error)

	// IncrementViews adds one view to the post matching slug, or when no
	// slug matches, the post with that ID. It returns the updated post.
	IncrementViews(ctx context.Context, slugOrID string) (*models.Post, error)
	IncrementLikes(ctx context.Context, postID string) (int64, error)
	// DecrementLikes removes one like unless the count is already zero.
	DecrementLikes(ctx context.Context, postID string) (int64, error)
	IncrementComments(ctx context.Context, postID string) error
	DecrementComments(ctx context.Context, postID string) error

	StatusCounts(ctx context.Context) (models.PostStatusCounts, error)
	Engagement(ctx context.Context) (models.Engagement, error)
	CountsByCategory(ctx context.Context) ([]models.CategoryCount, error)
	MonthlyCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, categoryID string) (*models.Category, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Delete(ctx context.Context, categoryID string) error
	// ListWithCounts returns categories sorted by name. With activeOnly set
	// only active categories are listed and only published posts counted.
	ListWithCounts(ctx context.Context, activeOnly bool) ([]models.CategoryWithCount, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID string) (*models.Comment, error)
	Delete(ctx context.Context, commentID string) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	List(ctx context.Context, query models.CommentQuery) ([]models.Comment, int64, error)
	UpdateStatus(ctx context.Context, commentID string, status models.CommentStatus) (*models.Comment, error)
	// BulkUpdateStatus returns how many comments actually changed.
	BulkUpdateStatus(ctx context.Context, commentIDs []string, status models.CommentStatus) (int64, error)
	IncrementLikes(ctx context.Context, commentID string) (int64, error)
	StatusCounts(ctx context.Context) (models.CommentStatusCounts, error)
}

type Repository struct {
	Post     PostRepository
	Category CategoryRepository
	Comment  CommentRepository
}

func NewMongoRepository(db *mongo.Database) *Repository {
	return &Repository{
		Post:     mongodb.NewPostRepository(db),
		Category: mongodb.NewCategoryRepository(db),
		Comment:  mongodb.NewCommentRepository(db),
	}
}

func NewPostgresRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Post:     postgres.NewPostRepository(db),
		Category: postgres.NewCategoryRepository(db),
		Comment:  postgres.NewCommentRepository(db),
	}
}

var (
	_ PostRepository     = (*mongodb.PostRepository)(nil)
	_ CategoryRepository = (*mongodb.CategoryRepository)(nil)
	_ CommentRepository  = (*mongodb.CommentRepository)(nil)
	_ PostRepository     = (*postgres.PostRepository)(nil)
	_ CategoryRepository = (*postgres.CategoryRepository)(nil)
	_ CommentRepository  = (*postgres.CommentRepository)(nil)
)
