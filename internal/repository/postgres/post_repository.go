package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"hrcms/internal/models"
)

type postRow struct {
	ID              string         `db:"id"`
	Title           string         `db:"title"`
	Slug            string         `db:"slug"`
	Content         string         `db:"content"`
	Excerpt         string         `db:"excerpt"`
	CategoryID      string         `db:"category_id"`
	Tags            pq.StringArray `db:"tags"`
	FeaturedImage   string         `db:"featured_image"`
	Status          string         `db:"status"`
	Views           int64          `db:"views"`
	Likes           int64          `db:"likes"`
	Comments        int64          `db:"comments"`
	MetaTitle       string         `db:"meta_title"`
	MetaDescription string         `db:"meta_description"`
	PublishedAt     *time.Time     `db:"published_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`

	CategoryName  sql.NullString `db:"category_name"`
	CategorySlug  sql.NullString `db:"category_slug"`
	CategoryColor sql.NullString `db:"category_color"`
}

func newPostRow(p *models.Post) postRow {
	tags := pq.StringArray(p.Tags)
	if tags == nil {
		tags = pq.StringArray{}
	}
	return postRow{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Excerpt:         p.Excerpt,
		CategoryID:      p.Category.ID,
		Tags:            tags,
		FeaturedImage:   p.FeaturedImage,
		Status:          string(p.Status),
		Views:           p.Views,
		Likes:           p.Likes,
		Comments:        p.Comments,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		PublishedAt:     p.PublishedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r postRow) model() models.Post {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return models.Post{
		ID:    r.ID,
		Title: r.Title,
		Slug:  r.Slug,
		Category: models.CategoryRef{
			ID:    r.CategoryID,
			Name:  r.CategoryName.String,
			Slug:  r.CategorySlug.String,
			Color: r.CategoryColor.String,
		},
		Content:         r.Content,
		Excerpt:         r.Excerpt,
		Tags:            tags,
		FeaturedImage:   r.FeaturedImage,
		Status:          models.PostStatus(r.Status),
		Views:           r.Views,
		Likes:           r.Likes,
		Comments:        r.Comments,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		PublishedAt:     r.PublishedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.category_id, p.tags, p.featured_image,
	p.status, p.views, p.likes, p.comments, p.meta_title, p.meta_description,
	p.published_at, p.created_at, p.updated_at,
	c.name AS category_name, c.slug AS category_slug, c.color AS category_color`

func selectPosts(withContent bool) string {
	content := "p.content"
	if !withContent {
		content = "'' AS content"
	}
	return "SELECT " + content + ", " + postColumns +
		" FROM posts p LEFT JOIN categories c ON c.id = p.category_id"
}

type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if !validID(post.Category.ID) {
		return notFound("category", post.Category.ID)
	}

	query := `
        INSERT INTO posts
        (id, title, slug, content, excerpt, category_id, tags, featured_image, status,
         views, likes, comments, meta_title, meta_description, published_at, created_at, updated_at)
        VALUES
        (:id, :title, :slug, :content, :excerpt, :category_id, :tags, :featured_image, :status,
         :views, :likes, :comments, :meta_title, :meta_description, :published_at, :created_at, :updated_at)
    `

	row := newPostRow(post)
	row.ID = uuid.New().String()

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return translate(err, "insert post")
	}

	post.ID = row.ID
	return nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if !validID(post.ID) {
		return notFound("post", post.ID)
	}
	if !validID(post.Category.ID) {
		return notFound("category", post.Category.ID)
	}

	query := `
		UPDATE posts SET
			title = :title,
			slug = :slug,
			content = :content,
			excerpt = :excerpt,
			category_id = :category_id,
			tags = :tags,
			featured_image = :featured_image,
			status = :status,
			meta_title = :meta_title,
			meta_description = :meta_description,
			published_at = :published_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	res, err := r.db.NamedExecContext(ctx, query, newPostRow(post))
	if err != nil {
		return translate(err, "update post")
	}
	return checkAffected(res, "post", post.ID)
}

func (r *PostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	if !validID(postID) {
		return nil, notFound("post", postID)
	}

	var row postRow
	err := r.db.GetContext(ctx, &row, selectPosts(true)+" WHERE p.id = $1", postID)
	if err != nil {
		return nil, translate(err, "get post")
	}

	post := row.model()
	return &post, nil
}

func (r *PostRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.db, "posts", slug, excludeID)
}

func slugExists(ctx context.Context, db *sqlx.DB, table, slug, excludeID string) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM " + table + " WHERE slug = $1"
	args := []any{slug}
	if validID(excludeID) {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += ")"

	var exists bool
	if err := db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, errors.Wrap(err, "check slug")
	}
	return exists, nil
}

// postWhere renders the WHERE clause for a listing and its positional args.
func postWhere(q models.PostQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Status != "" {
		conds = append(conds, "p.status = "+arg(string(q.Status)))
	}
	if q.CategoryID != "" {
		if validID(q.CategoryID) {
			conds = append(conds, "p.category_id = "+arg(q.CategoryID))
		} else {
			conds = append(conds, "FALSE")
		}
	}
	if q.Tag != "" {
		conds = append(conds, arg(q.Tag)+" = ANY(p.tags)")
	}
	if q.Search != "" {
		conds = append(conds, "to_tsvector('english', p.title || ' ' || p.content || ' ' || array_to_string(p.tags, ' '))"+
			" @@ plainto_tsquery('english', "+arg(q.Search)+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func postOrder(sort models.PostSort) string {
	switch sort {
	case models.SortViews:
		return " ORDER BY p.views DESC, p.created_at DESC"
	case models.SortComments:
		return " ORDER BY p.comments DESC, p.created_at DESC"
	case models.SortLikes:
		return " ORDER BY p.likes DESC, p.created_at DESC"
	default:
		return " ORDER BY p.published_at DESC NULLS LAST, p.created_at DESC"
	}
}

func (r *PostRepository) List(ctx context.Context, q models.PostQuery) ([]models.Post, int64, error) {
	where, args := postWhere(q)

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM posts p"+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}

	query := selectPosts(!q.ExcludeContent) + where + postOrder(q.Sort)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "list posts")
	}

	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.model())
	}
	return posts, total, nil
}

func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	if !validID(postID) {
		return notFound("post", postID)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return errors.Wrap(err, "delete post")
	}
	return checkAffected(res, "post", postID)
}

func (r *PostRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	if !validID(categoryID) {
		return 0, nil
	}

	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE category_id = $1`, categoryID); err != nil {
		return 0, errors.Wrap(err, "count posts by category")
	}
	return n, nil
}

func (r *PostRepository) incrementViewsWhere(ctx context.Context, column, value string) (*models.Post, error) {
	query := `WITH p AS (UPDATE posts SET views = views + 1 WHERE ` + column + ` = $1 RETURNING *) ` +
		strings.Replace(selectPosts(true), "FROM posts p", "FROM p", 1)

	var row postRow
	if err := r.db.GetContext(ctx, &row, query, value); err != nil {
		return nil, err
	}
	post := row.model()
	return &post, nil
}

func (r *PostRepository) IncrementViews(ctx context.Context, slugOrID string) (*models.Post, error) {
	post, err := r.incrementViewsWhere(ctx, "slug", slugOrID)
	if errors.Is(err, sql.ErrNoRows) && validID(slugOrID) {
		post, err = r.incrementViewsWhere(ctx, "id", slugOrID)
	}
	if err != nil {
		return nil, translate(err, "increment views")
	}
	return post, nil
}

func (r *PostRepository) IncrementLikes(ctx context.Context, postID string) (int64, error) {
	if !validID(postID) {
		return 0, notFound("post", postID)
	}

	var likes int64
	err := r.db.GetContext(ctx, &likes, `UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING likes`, postID)
	if err != nil {
		return 0, translate(err, "increment likes")
	}
	return likes, nil
}

func (r *PostRepository) DecrementLikes(ctx context.Context, postID string) (int64, error) {
	if !validID(postID) {
		return 0, notFound("post", postID)
	}

	var likes int64
	err := r.db.GetContext(ctx, &likes,
		`UPDATE posts SET likes = likes - 1 WHERE id = $1 AND likes > 0 RETURNING likes`, postID)
	if err == nil {
		return likes, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrap(err, "decrement likes")
	}

	if err = r.db.GetContext(ctx, &likes, `SELECT likes FROM posts WHERE id = $1`, postID); err != nil {
		return 0, translate(err, "get likes")
	}
	return likes, nil
}

func (r *PostRepository) IncrementComments(ctx context.Context, postID string) error {
	if !validID(postID) {
		return notFound("post", postID)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE posts SET comments = comments + 1 WHERE id = $1`, postID)
	if err != nil {
		return errors.Wrap(err, "increment comments")
	}
	return checkAffected(res, "post", postID)
}

func (r *PostRepository) DecrementComments(ctx context.Context, postID string) error {
	if !validID(postID) {
		return notFound("post", postID)
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET comments = comments - 1 WHERE id = $1 AND comments > 0`, postID)
	if err != nil {
		return errors.Wrap(err, "decrement comments")
	}
	return nil
}

type statusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

func (r *PostRepository) StatusCounts(ctx context.Context) (models.PostStatusCounts, error) {
	var (
		counts models.PostStatusCounts
		rows   []statusCount
	)
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM posts GROUP BY status`); err != nil {
		return counts, errors.Wrap(err, "count posts by status")
	}

	for _, row := range rows {
		counts.Total += row.Count
		switch models.PostStatus(row.Status) {
		case models.PostPublished:
			counts.Published = row.Count
		case models.PostDraft:
			counts.Draft = row.Count
		case models.PostArchived:
			counts.Archived = row.Count
		}
	}
	return counts, nil
}

func (r *PostRepository) Engagement(ctx context.Context) (models.Engagement, error) {
	var row struct {
		Views    int64 `db:"views"`
		Likes    int64 `db:"likes"`
		Comments int64 `db:"comments"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT COALESCE(SUM(views), 0) AS views,
		       COALESCE(SUM(likes), 0) AS likes,
		       COALESCE(SUM(comments), 0) AS comments
		FROM posts`)
	if err != nil {
		return models.Engagement{}, errors.Wrap(err, "sum engagement")
	}
	return models.Engagement{Views: row.Views, Likes: row.Likes, Comments: row.Comments}, nil
}

func (r *PostRepository) CountsByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	var rows []struct {
		CategoryID string `db:"category_id"`
		Name       string `db:"name"`
		Count      int64  `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT p.category_id, COALESCE(c.name, '') AS name, COUNT(*) AS count
		FROM posts p LEFT JOIN categories c ON c.id = p.category_id
		GROUP BY p.category_id, c.name
		ORDER BY count DESC, name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "count posts by category")
	}

	out := make([]models.CategoryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CategoryCount{CategoryID: row.CategoryID, Name: row.Name, Count: row.Count})
	}
	return out, nil
}

func (r *PostRepository) MonthlyCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	var rows []struct {
		Year  int   `db:"year"`
		Month int   `db:"month"`
		Count int64 `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC')::int AS year,
		       EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS month,
		       COUNT(*) AS count
		FROM posts
		WHERE created_at >= $1
		GROUP BY 1, 2
		ORDER BY 1, 2`, since)
	if err != nil {
		return nil, errors.Wrap(err, "count posts by month")
	}

	out := make([]models.MonthlyCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MonthlyCount{Year: row.Year, Month: row.Month, Count: row.Count})
	}
	return out, nil
}
