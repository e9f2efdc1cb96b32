package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"hrcms/internal/models"
)

type CategoriesResponse struct {
	Categories []models.CategoryWithCount `json:"categories"`
}

type CategoryResponse struct {
	Category *models.Category `json:"category"`
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	categories, err := h.CategoryService.ListCategories(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, CategoriesResponse{Categories: orEmpty(categories)}, len(categories), nil)
}

// GetCategories lists active categories with their published post counts.
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, r, true)
}

// GetAllCategories lists every category with counts over all posts.
func (h *Handlers) GetAllCategories(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, r, false)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	category, err := h.CategoryService.CreateCategory(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, CategoryResponse{Category: category})
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	category, err := h.CategoryService.UpdateCategory(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, CategoryResponse{Category: category})
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.CategoryService.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
