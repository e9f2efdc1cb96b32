package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"hrcms/internal/auth"
	"hrcms/internal/models"
	"hrcms/internal/service"
)

type PostsResponse struct {
	Posts []models.Post `json:"posts"`
}

type PostResponse struct {
	Post *models.Post `json:"post"`
}

type PostDetailResponse struct {
	Post     *models.Post     `json:"post"`
	Comments []models.Comment `json:"comments"`
}

type LikesResponse struct {
	Likes int64 `json:"likes"`
}

type PostDeletedResponse struct {
	DeletedComments int64 `json:"deletedComments"`
}

type StatsResponse struct {
	Stats *models.PostStats `json:"stats"`
}

// GetPosts lists posts. Anonymous callers only ever get published posts.
func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	params := service.ParseListPostsParams(r.URL.Query())

	posts, pagination, err := h.PostService.ListPosts(r.Context(), auth.PrincipalFrom(r.Context()), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeList(w, PostsResponse{Posts: orEmpty(posts)}, len(posts), &pagination)
}

func (h *Handlers) GetRecentPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.RecentPosts(r.Context(), service.ParseFeedLimit(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, PostsResponse{Posts: orEmpty(posts)}, len(posts), nil)
}

func (h *Handlers) GetPopularPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.PopularPosts(r.Context(), service.ParseFeedLimit(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, PostsResponse{Posts: orEmpty(posts)}, len(posts), nil)
}

func (h *Handlers) GetPostStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.StatsService.PostStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, StatsResponse{Stats: stats})
}

// GetPost returns a post by slug or id, counting the view.
func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, comments, err := h.PostService.GetPost(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, PostDetailResponse{Post: post, Comments: orEmpty(comments)})
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.PostInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, PostResponse{Post: post})
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req models.PostInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.PostService.UpdatePost(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, PostResponse{Post: post})
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	removed, err := h.PostService.DeletePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, PostDeletedResponse{DeletedComments: removed})
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	likes, err := h.PostService.LikePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, LikesResponse{Likes: likes})
}

func (h *Handlers) UnlikePost(w http.ResponseWriter, r *http.Request) {
	likes, err := h.PostService.UnlikePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, LikesResponse{Likes: likes})
}

// GetPostComments lists the visible top level comments of a post.
func (h *Handlers) GetPostComments(w http.ResponseWriter, r *http.Request) {
	page, limit := service.ParsePage(r.URL.Query())

	comments, pagination, err := h.CommentService.ListPostComments(r.Context(), mux.Vars(r)["postId"], page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, CommentsResponse{Comments: orEmpty(comments)}, len(comments), &pagination)
}
