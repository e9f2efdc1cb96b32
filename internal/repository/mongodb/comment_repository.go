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

type CommentRepository struct {
	comments *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{comments: db.Collection(commentsCollection)}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	doc, err := newCommentDoc(comment)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err = r.comments.InsertOne(ctx, doc); err != nil {
		return translate(err, "insert comment")
	}

	comment.ID = doc.ID.Hex()
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	oid, err := objectID(commentID)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	if err = r.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "find comment")
	}

	comment := doc.model()
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, commentID string) error {
	oid, err := objectID(commentID)
	if err != nil {
		return err
	}

	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "delete comment")
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(apperror.ErrNotFound, "comment %s", commentID)
	}

	// replies of a deleted comment become top-level, as in postgres
	if _, err = r.comments.UpdateMany(ctx,
		bson.M{"parentComment": oid},
		bson.M{"$set": bson.M{"parentComment": nil}},
	); err != nil {
		return errors.Wrap(err, "detach replies")
	}
	return nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	oid, err := objectID(postID)
	if err != nil {
		return 0, err
	}

	res, err := r.comments.DeleteMany(ctx, bson.M{"post": oid})
	if err != nil {
		return 0, errors.Wrap(err, "delete post comments")
	}
	return res.DeletedCount, nil
}

func (r *CommentRepository) List(ctx context.Context, q models.CommentQuery) ([]models.Comment, int64, error) {
	filter := commentFilter(q)

	total, err := r.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count comments")
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if q.Skip > 0 {
		findOpts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		findOpts.SetLimit(int64(q.Limit))
	}

	cur, err := r.comments.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find comments")
	}

	var docs []commentDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, 0, errors.Wrap(err, "decode comments")
	}

	out := make([]models.Comment, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, total, nil
}

func (r *CommentRepository) UpdateStatus(ctx context.Context, commentID string, status models.CommentStatus) (*models.Comment, error) {
	oid, err := objectID(commentID)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	err = r.comments.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translate(err, "update comment status")
	}

	comment := doc.model()
	return &comment, nil
}

func (r *CommentRepository) BulkUpdateStatus(ctx context.Context, commentIDs []string, status models.CommentStatus) (int64, error) {
	oids := objectIDs(commentIDs)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.comments.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}, "status": bson.M{"$ne": string(status)}},
		bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "bulk update comment status")
	}
	return res.ModifiedCount, nil
}

func (r *CommentRepository) IncrementLikes(ctx context.Context, commentID string) (int64, error) {
	oid, err := objectID(commentID)
	if err != nil {
		return 0, err
	}

	var doc commentDoc
	err = r.comments.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, translate(err, "increment comment likes")
	}
	return doc.Likes, nil
}

func (r *CommentRepository) StatusCounts(ctx context.Context) (models.CommentStatusCounts, error) {
	var counts models.CommentStatusCounts

	cur, err := r.comments.Aggregate(ctx, groupCountPipeline("status"))
	if err != nil {
		return counts, errors.Wrap(err, "aggregate comment status")
	}
	var groups []groupCount
	if err = cur.All(ctx, &groups); err != nil {
		return counts, errors.Wrap(err, "decode comment status")
	}

	for _, g := range groups {
		counts.Total += g.Count
		switch models.CommentStatus(g.ID) {
		case models.CommentVisible:
			counts.Visible = g.Count
		case models.CommentHidden:
			counts.Hidden = g.Count
		}
	}
	return counts, nil
}
