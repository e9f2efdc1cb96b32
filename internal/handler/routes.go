package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIPrefix is where the blog API is mounted.
const APIPrefix = "/api/blog"

// Routes registers every endpoint on r. admin wraps the routes that need an
// admin principal. Literal segments are registered before the {slug} and
// {id} patterns they would otherwise be captured by.
func (h *Handlers) Routes(r *mux.Router, admin func(http.Handler) http.Handler) {
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(APIPrefix).Subrouter()
	adminOnly := func(f http.HandlerFunc) http.Handler {
		return admin(f)
	}

	// posts
	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/recent", h.GetRecentPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/popular", h.GetPopularPosts).Methods(http.MethodGet)
	api.Handle("/posts/stats", adminOnly(h.GetPostStats)).Methods(http.MethodGet)
	api.HandleFunc("/posts/{postId}/comments", h.GetPostComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{slug}", h.GetPost).Methods(http.MethodGet)
	api.Handle("/posts", adminOnly(h.CreatePost)).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/like", h.LikePost).Methods(http.MethodPatch)
	api.HandleFunc("/posts/{id}/unlike", h.UnlikePost).Methods(http.MethodPatch)
	api.Handle("/posts/{id}", adminOnly(h.UpdatePost)).Methods(http.MethodPatch)
	api.Handle("/posts/{id}", adminOnly(h.DeletePost)).Methods(http.MethodDelete)

	// categories
	api.HandleFunc("/categories", h.GetCategories).Methods(http.MethodGet)
	api.Handle("/categories/all", adminOnly(h.GetAllCategories)).Methods(http.MethodGet)
	api.Handle("/categories", adminOnly(h.CreateCategory)).Methods(http.MethodPost)
	api.Handle("/categories/{id}", adminOnly(h.UpdateCategory)).Methods(http.MethodPatch)
	api.Handle("/categories/{id}", adminOnly(h.DeleteCategory)).Methods(http.MethodDelete)

	// comments
	api.Handle("/comments", adminOnly(h.GetComments)).Methods(http.MethodGet)
	api.HandleFunc("/comments", h.CreateComment).Methods(http.MethodPost)
	api.Handle("/comments/bulk-status", adminOnly(h.BulkUpdateCommentStatus)).Methods(http.MethodPatch)
	api.Handle("/comments/{id}/status", adminOnly(h.UpdateCommentStatus)).Methods(http.MethodPatch)
	api.HandleFunc("/comments/{id}/like", h.LikeComment).Methods(http.MethodPatch)
	api.Handle("/comments/{id}", adminOnly(h.DeleteComment)).Methods(http.MethodDelete)

	// uploads
	api.Handle("/upload-image", adminOnly(h.UploadImage)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteStatus(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}
