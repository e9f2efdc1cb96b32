// Package mongodb implements the repositories on MongoDB.
package mongodb

import (
	"time"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"hrcms/internal/apperror"
	"hrcms/internal/models"
)

const (
	postsCollection      = "posts"
	categoriesCollection = "categories"
	commentsCollection   = "comments"
)

type postDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Slug            string             `bson:"slug"`
	Content         string             `bson:"content,omitempty"`
	Excerpt         string             `bson:"excerpt"`
	Category        primitive.ObjectID `bson:"category"`
	Tags            []string           `bson:"tags"`
	FeaturedImage   string             `bson:"featuredImage"`
	Status          string             `bson:"status"`
	Views           int64              `bson:"views"`
	Likes           int64              `bson:"likes"`
	Comments        int64              `bson:"comments"`
	MetaTitle       string             `bson:"metaTitle"`
	MetaDescription string             `bson:"metaDescription"`
	PublishedAt     *time.Time         `bson:"publishedAt"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`

	// filled by $lookup, never stored
	CategoryInfo []categoryDoc `bson:"categoryInfo,omitempty"`
}

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Color       string             `bson:"color"`
	IsActive    bool               `bson:"isActive"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// categoryCountDoc is a category aggregation row. The inline field must be
// exported for the struct codec to decode it.
type categoryCountDoc struct {
	Category  categoryDoc `bson:",inline"`
	PostCount int64       `bson:"postCount"`
}

type commentAuthorDoc struct {
	Name string `bson:"name"`
}

type commentDoc struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Post          primitive.ObjectID  `bson:"post"`
	Author        commentAuthorDoc    `bson:"author"`
	Content       string              `bson:"content"`
	Status        string              `bson:"status"`
	ParentComment *primitive.ObjectID `bson:"parentComment"`
	Likes         int64               `bson:"likes"`
	IPAddress     string              `bson:"ipAddress"`
	UserAgent     string              `bson:"userAgent"`
	CreatedAt     time.Time           `bson:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt"`
}

// objectID parses a hex id. Malformed ids can never match a document,
// so they are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(apperror.ErrNotFound, "malformed id %q", id)
	}
	return oid, nil
}

// objectIDs converts ids, silently skipping malformed ones.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// translate maps driver errors onto the repository sentinels.
func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errors.Wrap(apperror.ErrNotFound, msg)
	case mongo.IsDuplicateKeyError(err):
		return errors.Wrap(apperror.ErrDuplicate, msg)
	default:
		return errors.Wrap(err, msg)
	}
}

func newPostDoc(p *models.Post) (*postDoc, error) {
	categoryID, err := objectID(p.Category.ID)
	if err != nil {
		return nil, errors.Wrap(err, "post category")
	}

	doc := &postDoc{
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Excerpt:         p.Excerpt,
		Category:        categoryID,
		Tags:            p.Tags,
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
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if p.ID != "" {
		if doc.ID, err = objectID(p.ID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (d *postDoc) model() models.Post {
	p := models.Post{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Slug:            d.Slug,
		Content:         d.Content,
		Excerpt:         d.Excerpt,
		Category:        models.CategoryRef{ID: d.Category.Hex()},
		Tags:            d.Tags,
		FeaturedImage:   d.FeaturedImage,
		Status:          models.PostStatus(d.Status),
		Views:           d.Views,
		Likes:           d.Likes,
		Comments:        d.Comments,
		MetaTitle:       d.MetaTitle,
		MetaDescription: d.MetaDescription,
		PublishedAt:     d.PublishedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if len(d.CategoryInfo) > 0 {
		c := d.CategoryInfo[0]
		p.Category.Name, p.Category.Slug, p.Category.Color = c.Name, c.Slug, c.Color
	}
	return p
}

func newCategoryDoc(c *models.Category) (*categoryDoc, error) {
	doc := &categoryDoc{
		Name:        c.Name,
		Slug:        c.Slug,
		Color:       c.Color,
		IsActive:    c.IsActive,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.ID != "" {
		oid, err := objectID(c.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d *categoryDoc) model() models.Category {
	return models.Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Color:       d.Color,
		IsActive:    d.IsActive,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func newCommentDoc(c *models.Comment) (*commentDoc, error) {
	postID, err := objectID(c.PostID)
	if err != nil {
		return nil, errors.Wrap(err, "comment post")
	}

	doc := &commentDoc{
		Post:      postID,
		Author:    commentAuthorDoc{Name: c.Author.Name},
		Content:   c.Content,
		Status:    string(c.Status),
		Likes:     c.Likes,
		IPAddress: c.IPAddress,
		UserAgent: c.UserAgent,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.ParentComment != nil {
		parent, err := objectID(*c.ParentComment)
		if err != nil {
			return nil, errors.Wrap(err, "parent comment")
		}
		doc.ParentComment = &parent
	}
	return doc, nil
}

func (d *commentDoc) model() models.Comment {
	c := models.Comment{
		ID:        d.ID.Hex(),
		PostID:    d.Post.Hex(),
		Author:    models.CommentAuthor{Name: d.Author.Name},
		Content:   d.Content,
		Status:    models.CommentStatus(d.Status),
		Likes:     d.Likes,
		IPAddress: d.IPAddress,
		UserAgent: d.UserAgent,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.ParentComment != nil {
		parent := d.ParentComment.Hex()
		c.ParentComment = &parent
	}
	return c
}
