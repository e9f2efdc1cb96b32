package postgres

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hrcms/internal/models"
)

type categoryRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Color       string    `db:"color"`
	IsActive    bool      `db:"is_active"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	PostCount   int64     `db:"post_count"`
}

func newCategoryRow(c *models.Category) categoryRow {
	return categoryRow{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Color:       c.Color,
		IsActive:    c.IsActive,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r categoryRow) model() models.Category {
	return models.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Color:       r.Color,
		IsActive:    r.IsActive,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const categoryColumns = `c.id, c.name, c.slug, c.color, c.is_active, c.description, c.created_at, c.updated_at`

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
        INSERT INTO categories (id, name, slug, color, is_active, description, created_at, updated_at)
        VALUES (:id, :name, :slug, :color, :is_active, :description, :created_at, :updated_at)
    `

	row := newCategoryRow(category)
	row.ID = uuid.New().String()

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return translate(err, "insert category")
	}

	category.ID = row.ID
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if !validID(category.ID) {
		return notFound("category", category.ID)
	}

	query := `
		UPDATE categories SET
			name = :name,
			slug = :slug,
			color = :color,
			is_active = :is_active,
			description = :description,
			updated_at = :updated_at
		WHERE id = :id
	`

	res, err := r.db.NamedExecContext(ctx, query, newCategoryRow(category))
	if err != nil {
		return translate(err, "update category")
	}
	return checkAffected(res, "category", category.ID)
}

func (r *CategoryRepository) GetByID(ctx context.Context, categoryID string) (*models.Category, error) {
	if !validID(categoryID) {
		return nil, notFound("category", categoryID)
	}

	var row categoryRow
	err := r.db.GetContext(ctx, &row, `SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1`, categoryID)
	if err != nil {
		return nil, translate(err, "get category")
	}

	category := row.model()
	return &category, nil
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.db, "categories", slug, excludeID)
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID string) error {
	if !validID(categoryID) {
		return notFound("category", categoryID)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return errors.Wrap(err, "delete category")
	}
	return checkAffected(res, "category", categoryID)
}

func categoriesWithCountsQuery(activeOnly bool) string {
	join := `LEFT JOIN posts p ON p.category_id = c.id`
	where := ""
	if activeOnly {
		join += ` AND p.status = 'published'`
		where = ` WHERE c.is_active`
	}
	return `SELECT ` + categoryColumns + `, COUNT(p.id) AS post_count FROM categories c ` + join + where +
		` GROUP BY c.id ORDER BY c.name ASC`
}

func (r *CategoryRepository) ListWithCounts(ctx context.Context, activeOnly bool) ([]models.CategoryWithCount, error) {
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, categoriesWithCountsQuery(activeOnly)); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	out := make([]models.CategoryWithCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CategoryWithCount{Category: row.model(), PostCount: row.PostCount})
	}
	return out, nil
}
