package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/repository"
	apperrors "github.com/okandemir/storefront/pkg/errors"
)

func newTestReviewService(reviews *mockReviewRepository, products *mockProductRepository) *ReviewService {
	return NewReviewService(reviews, products, noopEvents(), newTestLogger())
}

func TestAddReview_AuthenticatedSuccess(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)
	reviews.On("HasUserReview", ctx, "prod-1", "user-1").Return(false, nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Return(&domain.ReviewSummary{AverageRating: 4.5, RatingsCount: 2}, nil)

	review, summary, err := svc.AddReview(ctx, AddReviewInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		UserName:  "Jane Doe",
		Rating:    5,
		Comment:   "Sturdy and well finished.",
	})

	require.NoError(t, err)
	require.NotNil(t, review.UserID)
	assert.Equal(t, "user-1", *review.UserID)
	assert.Equal(t, "Jane Doe", review.DisplayName)
	assert.Equal(t, 4.5, summary.AverageRating)
	assert.Equal(t, 2, summary.RatingsCount)

	reviews.AssertExpectations(t)
}

func TestAddReview_AnonymousDefaultsDisplayName(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Return(&domain.ReviewSummary{AverageRating: 3, RatingsCount: 1}, nil)

	review, _, err := svc.AddReview(ctx, AddReviewInput{
		ProductID: "prod-1",
		Rating:    3,
	})

	require.NoError(t, err)
	assert.Nil(t, review.UserID)
	assert.Equal(t, "Anonymous", review.DisplayName)
	reviews.AssertNotCalled(t, "HasUserReview")
}

func TestAddReview_RatingBounds(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	for _, rating := range []int{0, -1, 6} {
		_, _, err := svc.AddReview(context.Background(), AddReviewInput{
			ProductID: "prod-1",
			Rating:    rating,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	reviews.AssertNotCalled(t, "Create")
}

func TestAddReview_CommentTooLong(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	_, _, err := svc.AddReview(context.Background(), AddReviewInput{
		ProductID: "prod-1",
		Rating:    4,
		Comment:   strings.Repeat("x", 2001),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAddReview_SecondReviewBySameUser(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)
	reviews.On("HasUserReview", ctx, "prod-1", "user-1").Return(true, nil)

	_, _, err := svc.AddReview(ctx, AddReviewInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		Rating:    4,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	reviews.AssertNotCalled(t, "Create")
}

func TestAddReview_MissingProduct(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.AddReview(ctx, AddReviewInput{ProductID: "missing", Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListReviews_IncludesSummary(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)
	ctx := context.Background()

	reviews.On("GetSummary", ctx, "prod-1").
		Return(&domain.ReviewSummary{AverageRating: 4.5, RatingsCount: 2}, nil)
	reviews.On("ListByProductID", ctx, "prod-1", repository.ReviewFilter{Page: 1, Limit: 10}).
		Return([]domain.Review{{ID: "review-1", Rating: 5}, {ID: "review-2", Rating: 4}}, 2, nil)

	page, err := svc.ListReviews(ctx, ListReviewsInput{ProductID: "prod-1"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 4.5, page.Summary.AverageRating)
	assert.Equal(t, 2, page.Summary.RatingsCount)
}

func TestListReviews_ZeroReviews(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)
	ctx := context.Background()

	reviews.On("GetSummary", ctx, "prod-1").
		Return(&domain.ReviewSummary{AverageRating: 0, RatingsCount: 0}, nil)
	reviews.On("ListByProductID", ctx, "prod-1", repository.ReviewFilter{Page: 1, Limit: 10}).
		Return([]domain.Review{}, 0, nil)

	page, err := svc.ListReviews(ctx, ListReviewsInput{ProductID: "prod-1"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Summary.AverageRating)
	assert.Zero(t, page.Summary.RatingsCount)
}

func TestListReviews_MissingProduct(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)
	ctx := context.Background()

	reviews.On("GetSummary", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.ListReviews(ctx, ListReviewsInput{ProductID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
