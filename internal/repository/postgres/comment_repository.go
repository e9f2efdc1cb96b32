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

type commentRow struct {
	ID            string         `db:"id"`
	PostID        string         `db:"post_id"`
	AuthorName    string         `db:"author_name"`
	Content       string         `db:"content"`
	Status        string         `db:"status"`
	ParentComment sql.NullString `db:"parent_comment"`
	Likes         int64          `db:"likes"`
	IPAddress     string         `db:"ip_address"`
	UserAgent     string         `db:"user_agent"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func newCommentRow(c *models.Comment) commentRow {
	row := commentRow{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorName: c.Author.Name,
		Content:    c.Content,
		Status:     string(c.Status),
		Likes:      c.Likes,
		IPAddress:  c.IPAddress,
		UserAgent:  c.UserAgent,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.ParentComment != nil {
		row.ParentComment = sql.NullString{String: *c.ParentComment, Valid: true}
	}
	return row
}

func (r commentRow) model() models.Comment {
	c := models.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		Author:    models.CommentAuthor{Name: r.AuthorName},
		Content:   r.Content,
		Status:    models.CommentStatus(r.Status),
		Likes:     r.Likes,
		IPAddress: r.IPAddress,
		UserAgent: r.UserAgent,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ParentComment.Valid {
		parent := r.ParentComment.String
		c.ParentComment = &parent
	}
	return c
}

const commentColumns = `id, post_id, author_name, content, status, parent_comment, likes,
	ip_address, user_agent, created_at, updated_at`

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if !validID(comment.PostID) {
		return notFound("post", comment.PostID)
	}
	if comment.ParentComment != nil && !validID(*comment.ParentComment) {
		return notFound("comment", *comment.ParentComment)
	}

	query := `
        INSERT INTO comments
        (id, post_id, author_name, content, status, parent_comment, likes, ip_address, user_agent, created_at, updated_at)
        VALUES
        (:id, :post_id, :author_name, :content, :status, :parent_comment, :likes, :ip_address, :user_agent, :created_at, :updated_at)
    `

	row := newCommentRow(comment)
	row.ID = uuid.New().String()

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return translate(err, "insert comment")
	}

	comment.ID = row.ID
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	if !validID(commentID) {
		return nil, notFound("comment", commentID)
	}

	var row commentRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, commentID); err != nil {
		return nil, translate(err, "get comment")
	}

	comment := row.model()
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, commentID string) error {
	if !validID(commentID) {
		return notFound("comment", commentID)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return errors.Wrap(err, "delete comment")
	}
	return checkAffected(res, "comment", commentID)
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	if !validID(postID) {
		return 0, notFound("post", postID)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, errors.Wrap(err, "delete post comments")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}

func commentWhere(q models.CommentQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.PostID != "" {
		if validID(q.PostID) {
			args = append(args, q.PostID)
			conds = append(conds, fmt.Sprintf("post_id = $%d", len(args)))
		} else {
			conds = append(conds, "FALSE")
		}
	}
	if q.Status != "" {
		args = append(args, string(q.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.TopLevelOnly {
		conds = append(conds, "parent_comment IS NULL")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *CommentRepository) List(ctx context.Context, q models.CommentQuery) ([]models.Comment, int64, error) {
	where, args := commentWhere(q)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "count comments")
	}

	query := `SELECT ` + commentColumns + ` FROM comments` + where + ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "list comments")
	}

	out := make([]models.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, total, nil
}

func (r *CommentRepository) UpdateStatus(ctx context.Context, commentID string, status models.CommentStatus) (*models.Comment, error) {
	if !validID(commentID) {
		return nil, notFound("comment", commentID)
	}

	var row commentRow
	err := r.db.GetContext(ctx, &row,
		`UPDATE comments SET status = $1, updated_at = $2 WHERE id = $3 RETURNING `+commentColumns,
		string(status), time.Now().UTC(), commentID)
	if err != nil {
		return nil, translate(err, "update comment status")
	}

	comment := row.model()
	return &comment, nil
}

func (r *CommentRepository) BulkUpdateStatus(ctx context.Context, commentIDs []string, status models.CommentStatus) (int64, error) {
	ids := make([]string, 0, len(commentIDs))
	for _, id := range commentIDs {
		if validID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET status = $1, updated_at = $2 WHERE id = ANY($3) AND status <> $1`,
		string(status), time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "bulk update comment status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}

func (r *CommentRepository) IncrementLikes(ctx context.Context, commentID string) (int64, error) {
	if !validID(commentID) {
		return 0, notFound("comment", commentID)
	}

	var likes int64
	err := r.db.GetContext(ctx, &likes, `UPDATE comments SET likes = likes + 1 WHERE id = $1 RETURNING likes`, commentID)
	if err != nil {
		return 0, translate(err, "increment comment likes")
	}
	return likes, nil
}

func (r *CommentRepository) StatusCounts(ctx context.Context) (models.CommentStatusCounts, error) {
	var (
		counts models.CommentStatusCounts
		rows   []statusCount
	)
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM comments GROUP BY status`); err != nil {
		return counts, errors.Wrap(err, "count comments by status")
	}

	for _, row := range rows {
		counts.Total += row.Count
		switch models.CommentStatus(row.Status) {
		case models.CommentVisible:
			counts.Visible = row.Count
		case models.CommentHidden:
			counts.Hidden = row.Count
		}
	}
	return counts, nil
}
