package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"hrcms/internal/models"
	"hrcms/internal/service"
)

type CommentsResponse struct {
	Comments []models.Comment `json:"comments"`
}

type CommentResponse struct {
	Comment *models.Comment `json:"comment"`
}

type BulkStatusRequest struct {
	CommentIDs []string             `json:"commentIds"`
	Status     models.CommentStatus `json:"status"`
}

type BulkStatusResponse struct {
	UpdatedCount int64 `json:"updatedCount"`
}

type StatusRequest struct {
	Status models.CommentStatus `json:"status"`
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetComments is the moderation listing; it includes hidden comments and request metadata.
func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := service.ParsePage(q)

	comments, pagination, err := h.CommentService.ListComments(r.Context(), service.CommentListParams{
		Page:   page,
		Limit:  limit,
		Status: models.CommentStatus(strings.TrimSpace(q.Get("status"))),
		PostID: strings.TrimSpace(q.Get("post")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, CommentsResponse{Comments: orEmpty(comments)}, len(comments), &pagination)
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.CommentService.CreateComment(r.Context(), req, models.RequestMeta{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	public := comment.Public()
	writeSuccess(w, http.StatusCreated, CommentResponse{Comment: &public})
}

func (h *Handlers) UpdateCommentStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.CommentService.UpdateCommentStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, CommentResponse{Comment: comment})
}

func (h *Handlers) BulkUpdateCommentStatus(w http.ResponseWriter, r *http.Request) {
	var req BulkStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	modified, err := h.CommentService.BulkUpdateStatus(r.Context(), req.CommentIDs, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, BulkStatusResponse{UpdatedCount: modified})
}

func (h *Handlers) LikeComment(w http.ResponseWriter, r *http.Request) {
	likes, err := h.CommentService.LikeComment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, LikesResponse{Likes: likes})
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.CommentService.DeleteComment(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
