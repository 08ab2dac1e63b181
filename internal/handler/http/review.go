package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okandemir/storefront/pkg/httputil"
	"github.com/okandemir/storefront/pkg/middleware"
	"github.com/okandemir/storefront/pkg/pagination"
	"github.com/okandemir/storefront/pkg/validator"

	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/service"
)

// ReviewHandler handles HTTP requests for product review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// CreateReviewRequest is the JSON request body for submitting a review.
type CreateReviewRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
	Rating      int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment     string `json:"comment" validate:"omitempty,max=2000"`
}

// CreateReviewResponse carries the stored review plus the updated aggregates.
type CreateReviewResponse struct {
	Review  *domain.Review        `json:"review"`
	Summary *domain.ReviewSummary `json:"summary"`
}

// ReviewListResponse is one page of reviews plus the current aggregates.
type ReviewListResponse struct {
	Items   []domain.Review       `json:"items"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
	Total   int                   `json:"total"`
	Summary *domain.ReviewSummary `json:"summary"`
}

// Create handles POST /api/products/{id}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	review, summary, err := h.service.AddReview(r.Context(), service.AddReviewInput{
		ProductID:   productID,
		UserID:      middleware.UserIDFromContext(r.Context()),
		UserName:    middleware.EmailFromContext(r.Context()),
		DisplayName: req.DisplayName,
		Rating:      req.Rating,
		Comment:     req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: &CreateReviewResponse{Review: review, Summary: summary},
	})
}

// List handles GET /api/products/{id}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := httputil.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	params := pagination.FromRequest(r)

	page, err := h.service.ListReviews(r.Context(), service.ListReviewsInput{
		ProductID: productID,
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: &ReviewListResponse{
		Items:   page.Items,
		Page:    page.Page,
		Limit:   page.Limit,
		Total:   page.Total,
		Summary: &page.Summary,
	}})
}
