package models

import (
	"time"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostDraft, PostPublished, PostArchived:
		return true
	}
	return false
}

type CommentStatus string

const (
	CommentVisible CommentStatus = "visible"
	CommentHidden  CommentStatus = "hidden"
)

func (s CommentStatus) Valid() bool {
	return s == CommentVisible || s == CommentHidden
}

// DefaultCategoryColor is applied when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

// CategoryRef is the part of a category embedded in post responses.
// Only ID is guaranteed; the other fields are filled when the store joins them.
type CategoryRef struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name,omitempty"`
	Slug  string `json:"slug,omitempty"`
	Color string `json:"color,omitempty"`
}

type Post struct {
	ID              string      `json:"id"`
	Title           string      `json:"title" validate:"required,max=200"`
	Slug            string      `json:"slug"`
	Content         string      `json:"content,omitempty" validate:"required"`
	Excerpt         string      `json:"excerpt,omitempty" validate:"max=300"`
	Category        CategoryRef `json:"category"`
	Tags            []string    `json:"tags"`
	FeaturedImage   string      `json:"featuredImage,omitempty" validate:"omitempty,url"`
	Status          PostStatus  `json:"status" validate:"required,oneof=draft published archived"`
	Views           int64       `json:"views" validate:"min=0"`
	Likes           int64       `json:"likes" validate:"min=0"`
	Comments        int64       `json:"comments" validate:"min=0"`
	MetaTitle       string      `json:"metaTitle,omitempty" validate:"max=60"`
	MetaDescription string      `json:"metaDescription,omitempty" validate:"max=160"`
	PublishedAt     *time.Time  `json:"publishedAt"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// PostInput carries a create or partial-update request. Nil fields are absent.
type PostInput struct {
	Title           *string     `json:"title"`
	Content         *string     `json:"content"`
	Excerpt         *string     `json:"excerpt"`
	Category        *string     `json:"category"`
	Tags            []string    `json:"tags"`
	FeaturedImage   *string     `json:"featuredImage"`
	Status          *PostStatus `json:"status"`
	MetaTitle       *string     `json:"metaTitle"`
	MetaDescription *string     `json:"metaDescription"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=50"`
	Slug        string    `json:"slug"`
	Color       string    `json:"color" validate:"omitempty,hexcolor"`
	IsActive    bool      `json:"isActive"`
	Description string    `json:"description,omitempty" validate:"max=200"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CategoryInput struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"isActive"`
	Description *string `json:"description"`
}

type CategoryWithCount struct {
	Category
	PostCount int64 `json:"postCount"`
}

type CommentAuthor struct {
	Name string `json:"name" validate:"required,max=50"`
}

type Comment struct {
	ID            string        `json:"id"`
	PostID        string        `json:"post" validate:"required"`
	Author        CommentAuthor `json:"author"`
	Content       string        `json:"content" validate:"required,max=1000"`
	Status        CommentStatus `json:"status" validate:"required,oneof=visible hidden"`
	ParentComment *string       `json:"parentComment"`
	Likes         int64         `json:"likes" validate:"min=0"`
	IPAddress     string        `json:"ipAddress,omitempty"`
	UserAgent     string        `json:"userAgent,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Public drops the request metadata that only moderators should see.
func (c Comment) Public() Comment {
	c.IPAddress = ""
	c.UserAgent = ""
	return c
}

type CommentInput struct {
	Post          string        `json:"post"`
	Author        CommentAuthor `json:"author"`
	Content       string        `json:"content"`
	ParentComment *string       `json:"parentComment"`
}

// RequestMeta is stamped onto comments by the server, never taken from the body.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NewPagination derives page metadata for a 1-based page of the given size.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		Limit:   limit,
		HasNext: int64(page)*int64(limit) < total,
		HasPrev: page > 1,
	}
}

type PostSort string

const (
	SortLatest   PostSort = "latest"
	SortViews    PostSort = "views"
	SortComments PostSort = "comments"
	SortLikes    PostSort = "likes"
)

// PostQuery is a store-neutral post listing request.
type PostQuery struct {
	Status         PostStatus
	CategoryID     string
	Tag            string
	Search         string
	Sort           PostSort
	Skip           int
	Limit          int
	ExcludeContent bool
}

// CommentQuery is a store-neutral comment listing request, newest first.
type CommentQuery struct {
	PostID       string
	Status       CommentStatus
	TopLevelOnly bool
	Skip         int
	Limit        int
}

type PostStatusCounts struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
	Archived  int64 `json:"archived"`
}

type Engagement struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

type CategoryCount struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

type CommentStatusCounts struct {
	Total   int64 `json:"total"`
	Visible int64 `json:"visible"`
	Hidden  int64 `json:"hidden"`
}

type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type PostStats struct {
	Posts      PostStatusCounts    `json:"posts"`
	Engagement Engagement          `json:"engagement"`
	ByCategory []CategoryCount     `json:"byCategory"`
	Comments   CommentStatusCounts `json:"comments"`
	Monthly    []MonthlyCount      `json:"monthly"`
}

type UploadResult struct {
	URL        string `json:"url"`
	ObjectName string `json:"objectName"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
}
