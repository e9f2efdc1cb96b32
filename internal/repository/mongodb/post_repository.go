package mongodb

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrcms/internal/apperror"
	"hrcms/internal/models"
)

type PostRepository struct {
	posts      *mongo.Collection
	categories *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		posts:      db.Collection(postsCollection),
		categories: db.Collection(categoriesCollection),
	}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	doc, err := newPostDoc(post)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err = r.posts.InsertOne(ctx, doc); err != nil {
		return translate(err, "insert post")
	}

	post.ID = doc.ID.Hex()
	return nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	doc, err := newPostDoc(post)
	if err != nil {
		return err
	}

	// counters are owned by the atomic increment paths and never overwritten here
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"title":           doc.Title,
		"slug":            doc.Slug,
		"content":         doc.Content,
		"excerpt":         doc.Excerpt,
		"category":        doc.Category,
		"tags":            doc.Tags,
		"featuredImage":   doc.FeaturedImage,
		"status":          doc.Status,
		"metaTitle":       doc.MetaTitle,
		"metaDescription": doc.MetaDescription,
		"publishedAt":     doc.PublishedAt,
		"updatedAt":       doc.UpdatedAt,
	}})
	if err != nil {
		return translate(err, "update post")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(apperror.ErrNotFound, "post %s", post.ID)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	oid, err := objectID(postID)
	if err != nil {
		return nil, err
	}

	var doc postDoc
	if err = r.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "find post")
	}

	post := doc.model()
	return &post, nil
}

func (r *PostRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.posts, slug, excludeID)
}

func slugExists(ctx context.Context, col *mongo.Collection, slug, excludeID string) (bool, error) {
	filter := bson.D{{Key: "slug", Value: slug}}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: oid}}})
	}

	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count slug")
	}
	return n > 0, nil
}

func (r *PostRepository) List(ctx context.Context, q models.PostQuery) ([]models.Post, int64, error) {
	total, err := r.posts.CountDocuments(ctx, postFilter(q))
	if err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}

	cur, err := r.posts.Aggregate(ctx, postListPipeline(q))
	if err != nil {
		return nil, 0, errors.Wrap(err, "aggregate posts")
	}

	var docs []postDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, 0, errors.Wrap(err, "decode posts")
	}

	posts := make([]models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].model())
	}
	return posts, total, nil
}

func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	oid, err := objectID(postID)
	if err != nil {
		return err
	}

	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "delete post")
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(apperror.ErrNotFound, "post %s", postID)
	}
	return nil
}

func (r *PostRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return 0, nil
	}

	n, err := r.posts.CountDocuments(ctx, bson.M{"category": oid})
	if err != nil {
		return 0, errors.Wrap(err, "count posts by category")
	}
	return n, nil
}

func (r *PostRepository) findAndInc(ctx context.Context, filter any, field string, delta int) (*postDoc, error) {
	var doc postDoc
	err := r.posts.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{field: delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *PostRepository) IncrementViews(ctx context.Context, slugOrID string) (*models.Post, error) {
	doc, err := r.findAndInc(ctx, bson.M{"slug": slugOrID}, "views", 1)
	if errors.Is(err, mongo.ErrNoDocuments) {
		oid, idErr := objectID(slugOrID)
		if idErr != nil {
			return nil, idErr
		}
		doc, err = r.findAndInc(ctx, bson.M{"_id": oid}, "views", 1)
	}
	if err != nil {
		return nil, translate(err, "increment views")
	}

	var category categoryDoc
	err = r.categories.FindOne(ctx, bson.M{"_id": doc.Category}).Decode(&category)
	switch {
	case err == nil:
		doc.CategoryInfo = []categoryDoc{category}
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, errors.Wrap(err, "find post category")
	}

	post := doc.model()
	return &post, nil
}

func (r *PostRepository) IncrementLikes(ctx context.Context, postID string) (int64, error) {
	oid, err := objectID(postID)
	if err != nil {
		return 0, err
	}

	doc, err := r.findAndInc(ctx, bson.M{"_id": oid}, "likes", 1)
	if err != nil {
		return 0, translate(err, "increment likes")
	}
	return doc.Likes, nil
}

func (r *PostRepository) DecrementLikes(ctx context.Context, postID string) (int64, error) {
	oid, err := objectID(postID)
	if err != nil {
		return 0, err
	}

	doc, err := r.findAndInc(ctx, bson.M{"_id": oid, "likes": bson.M{"$gt": 0}}, "likes", -1)
	if err == nil {
		return doc.Likes, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, errors.Wrap(err, "decrement likes")
	}

	// either the post is missing or its likes are already zero
	var current postDoc
	err = r.posts.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"likes": 1})).Decode(&current)
	if err != nil {
		return 0, translate(err, "find post likes")
	}
	return current.Likes, nil
}

func (r *PostRepository) IncrementComments(ctx context.Context, postID string) error {
	oid, err := objectID(postID)
	if err != nil {
		return err
	}

	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"comments": 1}})
	if err != nil {
		return errors.Wrap(err, "increment comments")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(apperror.ErrNotFound, "post %s", postID)
	}
	return nil
}

func (r *PostRepository) DecrementComments(ctx context.Context, postID string) error {
	oid, err := objectID(postID)
	if err != nil {
		return err
	}

	_, err = r.posts.UpdateOne(ctx,
		bson.M{"_id": oid, "comments": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"comments": -1}})
	if err != nil {
		return errors.Wrap(err, "decrement comments")
	}
	return nil
}

type groupCount struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *PostRepository) StatusCounts(ctx context.Context) (models.PostStatusCounts, error) {
	var counts models.PostStatusCounts

	cur, err := r.posts.Aggregate(ctx, groupCountPipeline("status"))
	if err != nil {
		return counts, errors.Wrap(err, "aggregate post status")
	}
	var groups []groupCount
	if err = cur.All(ctx, &groups); err != nil {
		return counts, errors.Wrap(err, "decode post status")
	}

	for _, g := range groups {
		counts.Total += g.Count
		switch models.PostStatus(g.ID) {
		case models.PostPublished:
			counts.Published = g.Count
		case models.PostDraft:
			counts.Draft = g.Count
		case models.PostArchived:
			counts.Archived = g.Count
		}
	}
	return counts, nil
}

func (r *PostRepository) Engagement(ctx context.Context) (models.Engagement, error) {
	var out models.Engagement

	cur, err := r.posts.Aggregate(ctx, engagementPipeline)
	if err != nil {
		return out, errors.Wrap(err, "aggregate engagement")
	}
	var rows []struct {
		Views    int64 `bson:"views"`
		Likes    int64 `bson:"likes"`
		Comments int64 `bson:"comments"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return out, errors.Wrap(err, "decode engagement")
	}

	if len(rows) > 0 {
		out = models.Engagement{Views: rows[0].Views, Likes: rows[0].Likes, Comments: rows[0].Comments}
	}
	return out, nil
}

func (r *PostRepository) CountsByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	cur, err := r.posts.Aggregate(ctx, byCategoryPipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate posts by category")
	}
	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Name  string             `bson:"name"`
		Count int64              `bson:"count"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode posts by category")
	}

	out := make([]models.CategoryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CategoryCount{CategoryID: row.ID.Hex(), Name: row.Name, Count: row.Count})
	}
	return out, nil
}

func (r *PostRepository) MonthlyCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	cur, err := r.posts.Aggregate(ctx, monthlyPipeline(since))
	if err != nil {
		return nil, errors.Wrap(err, "aggregate monthly posts")
	}
	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode monthly posts")
	}

	out := make([]models.MonthlyCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MonthlyCount{Year: row.ID.Year, Month: row.ID.Month, Count: row.Count})
	}
	return out, nil
}
