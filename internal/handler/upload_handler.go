package handlers

import (
	"fmt"
	"net/http"

	"github.com/Laisky/errors/v2"

	"hrcms/internal/apperror"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

// UploadImage stores the "image" form file and returns its public URL.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	maxSize := h.Cfg.Server.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, apperror.Validation(fmt.Sprintf("file too large (max %d MB)", maxSize/(1024*1024))))
		} else {
			h.writeError(w, r, apperror.Validation("could not parse multipart form"))
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, r, apperror.Validation("no image file provided",
			apperror.FieldError{Field: "image", Message: "is required"}))
		return
	}
	defer file.Close()

	result, err := h.UploadService.UploadImage(r.Context(), file, header.Size, header.Filename)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, result)
}
