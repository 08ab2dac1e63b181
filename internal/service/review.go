package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/event"
	"github.com/okandemir/storefront/internal/repository"
	apperrors "github.com/okandemir/storefront/pkg/errors"
)

const anonymousDisplayName = "Anonymous"

// AddReviewInput holds the parameters for submitting a review. UserID
// and UserName are filled from the token when the caller is
// authenticated; DisplayName is the submitted fallback for anonymous
// callers.
type AddReviewInput struct {
	ProductID   string
	UserID      string
	UserName    string
	DisplayName string
	Rating      int
	Comment     string
}

// ListReviewsInput holds review listing parameters.
type ListReviewsInput struct {
	ProductID string
	Page      int
	Limit     int
}

// ReviewPage is one page of reviews plus the aggregate summary.
type ReviewPage struct {
	Items   []domain.Review
	Page    int
	Limit   int
	Total   int
	Summary domain.ReviewSummary
}

// ReviewService implements the review business logic.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	events      *event.Publisher
	logger      *slog.Logger
}

// NewReviewService creates a review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	events *event.Publisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		events:      events,
		logger:      logger,
	}
}

// AddReview validates and stores a review, returning it together with
// the product's refreshed rating aggregates. Authenticated users may
// review a product at most once.
func (s *ReviewService) AddReview(ctx context.Context, input AddReviewInput) (*domain.Review, *domain.ReviewSummary, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	if len(input.Comment) > domain.MaxReviewCommentLength {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", domain.MaxReviewCommentLength))
	}

	if _, err := s.productRepo.GetByID(ctx, input.ProductID); err != nil {
		return nil, nil, fmt.Errorf("get product %s: %w", input.ProductID, err)
	}

	var userID *string
	displayName := strings.TrimSpace(input.DisplayName)

	if input.UserID != "" {
		// The unique index still backstops this check under concurrency.
		exists, err := s.reviewRepo.HasUserReview(ctx, input.ProductID, input.UserID)
		if err != nil {
			return nil, nil, fmt.Errorf("check existing review: %w", err)
		}
		if exists {
			return nil, nil, apperrors.InvalidInput("you have already reviewed this product")
		}
		id := input.UserID
		userID = &id
		if displayName == "" {
			displayName = input.UserName
		}
	}
	if displayName == "" {
		displayName = anonymousDisplayName
	}

	review := &domain.Review{
		ID:          uuid.New().String(),
		ProductID:   input.ProductID,
		UserID:      userID,
		DisplayName: displayName,
		Rating:      input.Rating,
		Comment:     input.Comment,
		CreatedAt:   time.Now().UTC(),
	}

	summary, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		return nil, nil, fmt.Errorf("create review: %w", err)
	}

	s.events.ReviewCreated(ctx, review, summary)

	s.logger.InfoContext(ctx, "review created",
		slog.String("product_id", input.ProductID),
		slog.Int("rating", input.Rating),
	)

	return review, summary, nil
}

// ListReviews returns a page of reviews for the product, newest first,
// together with the current rating summary.
func (s *ReviewService) ListReviews(ctx context.Context, input ListReviewsInput) (*ReviewPage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	summary, err := s.reviewRepo.GetSummary(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get review summary %s: %w", input.ProductID, err)
	}

	reviews, total, err := s.reviewRepo.ListByProductID(ctx, input.ProductID, repository.ReviewFilter{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &ReviewPage{
		Items:   reviews,
		Page:    page,
		Limit:   limit,
		Total:   total,
		Summary: *summary,
	}, nil
}
