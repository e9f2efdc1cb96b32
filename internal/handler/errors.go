package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"hrcms/internal/apperror"
	"hrcms/internal/models"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// SuccessResponse is the body of every successful request. List endpoints
// fill Results and Pagination.
type SuccessResponse struct {
	Status     string             `json:"status"`
	Results    *int               `json:"results,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Data       any                `json:"data"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteStatus writes an error envelope with an explicit status and message.
func WriteStatus(w http.ResponseWriter, statusCode int, message string) {
	status := statusFail
	if statusCode >= http.StatusInternalServerError {
		status = statusError
	}
	writeJSON(w, statusCode, ErrorResponse{Status: status, Message: message})
}

// WriteError converts err into an error envelope and returns the status
// written. Only application errors reach the client verbatim.
func WriteError(w http.ResponseWriter, err error) int {
	statusCode := apperror.HTTPStatus(err)
	appErr, ok := apperror.As(err)
	if !ok || statusCode >= http.StatusInternalServerError {
		WriteStatus(w, statusCode, "something went wrong")
		return statusCode
	}

	writeJSON(w, statusCode, ErrorResponse{
		Status:  statusFail,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
	return statusCode
}

// writeError is WriteError plus a log line for server side failures.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if statusCode := WriteError(w, err); statusCode >= http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", w.Header().Get("X-Request-ID")),
			zap.Error(err))
	}
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, SuccessResponse{Status: statusSuccess, Data: data})
}

func writeList(w http.ResponseWriter, data any, results int, pagination *models.Pagination) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Status:     statusSuccess,
		Results:    &results,
		Pagination: pagination,
		Data:       data,
	})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is empty")
		}
		return apperror.Validation("invalid request body")
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
