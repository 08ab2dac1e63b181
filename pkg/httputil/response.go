// Package httputil provides the JSON response envelope shared by all
// HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	apperrors "github.com/okandemir/storefront/pkg/errors"
	"github.com/okandemir/storefront/pkg/validator"
)

// Response is the envelope for every JSON response body.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// PaginatedResponse wraps a result page together with paging metadata.
type PaginatedResponse struct {
	Items any   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// WriteJSON writes v inside the response envelope with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: v})
}

// WritePaginated writes a page of items with paging metadata.
func WritePaginated(w http.ResponseWriter, status int, items any, page, limit int, total int64) {
	WriteJSON(w, status, PaginatedResponse{Items: items, Page: page, Limit: limit, Total: total})
}

// WriteError maps err to an HTTP status and writes the error envelope.
// Validation errors become 400 responses carrying per-field messages.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		writeErrorResponse(w, r, http.StatusBadRequest, &ErrorResponse{
			Code:    "INVALID_INPUT",
			Message: "validation failed",
			Fields:  verr.Fields(),
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		if status < http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	writeErrorResponse(w, r, status, &ErrorResponse{Code: code, Message: message})
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, er *ErrorResponse) {
	er.RequestID = middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: er})
}

// ParseUUID validates that raw is a UUID and returns it, or an invalid
// input error naming the parameter.
func ParseUUID(raw, param string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.InvalidInput(param + " must be a valid UUID")
	}
	return id.String(), nil
}
