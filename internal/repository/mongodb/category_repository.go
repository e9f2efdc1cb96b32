package mongodb

import (
	"context"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"hrcms/internal/apperror"
	"hrcms/internal/models"
)

type CategoryRepository struct {
	categories *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{categories: db.Collection(categoriesCollection)}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	doc, err := newCategoryDoc(category)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err = r.categories.InsertOne(ctx, doc); err != nil {
		return translate(err, "insert category")
	}

	category.ID = doc.ID.Hex()
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	doc, err := newCategoryDoc(category)
	if err != nil {
		return err
	}

	res, err := r.categories.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"name":        doc.Name,
		"slug":        doc.Slug,
		"color":       doc.Color,
		"isActive":    doc.IsActive,
		"description": doc.Description,
		"updatedAt":   doc.UpdatedAt,
	}})
	if err != nil {
		return translate(err, "update category")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(apperror.ErrNotFound, "category %s", category.ID)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, categoryID string) (*models.Category, error) {
	oid, err := objectID(categoryID)
	if err != nil {
		return nil, err
	}

	var doc categoryDoc
	if err = r.categories.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "find category")
	}

	category := doc.model()
	return &category, nil
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.categories, slug, excludeID)
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID string) error {
	oid, err := objectID(categoryID)
	if err != nil {
		return err
	}

	res, err := r.categories.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "delete category")
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(apperror.ErrNotFound, "category %s", categoryID)
	}
	return nil
}

func (r *CategoryRepository) ListWithCounts(ctx context.Context, activeOnly bool) ([]models.CategoryWithCount, error) {
	cur, err := r.categories.Aggregate(ctx, categoriesWithCountsPipeline(activeOnly))
	if err != nil {
		return nil, errors.Wrap(err, "aggregate categories")
	}

	var docs []categoryCountDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}

	out := make([]models.CategoryWithCount, 0, len(docs))
	for i := range docs {
		out = append(out, models.CategoryWithCount{
			Category:  docs[i].Category.model(),
			PostCount: docs[i].PostCount,
		})
	}
	return out, nil
}
