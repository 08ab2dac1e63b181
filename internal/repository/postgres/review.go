package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/repository"
	"github.com/okandemir/storefront/pkg/database"
	apperrors "github.com/okandemir/storefront/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts the review and recomputes the product's rating
// aggregates inside one transaction, so concurrent reviews can never
// leave the aggregates out of sync with the rows.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.ReviewSummary, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin review tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := `
		INSERT INTO product_reviews (id, product_id, user_id, display_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, insert,
		review.ID,
		review.ProductID,
		review.UserID,
		review.DisplayName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.InvalidInput("you have already reviewed this product")
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("product", review.ProductID)
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}

	recompute := `
		UPDATE products p
		SET average_rating = s.avg_rating,
		    ratings_count  = s.cnt,
		    updated_at     = NOW()
		FROM (
			SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0) AS avg_rating,
			       COUNT(*)::int AS cnt
			FROM product_reviews
			WHERE product_id = $1
		) s
		WHERE p.id = $1
		RETURNING p.average_rating, p.ratings_count`

	var summary domain.ReviewSummary
	if err := tx.QueryRow(ctx, recompute, review.ProductID).Scan(&summary.AverageRating, &summary.RatingsCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", review.ProductID)
		}
		return nil, fmt.Errorf("recompute rating aggregates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit review tx: %w", err)
	}
	return &summary, nil
}

// ListByProductID returns a page of reviews, newest first, with the total count.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query := `
		SELECT id, product_id, user_id, display_name, rating, comment, created_at,
		       count(*) OVER() AS total_count
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.DisplayName,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	// An empty page past the last row yields no rows at all, so the
	// window total never gets scanned. Count separately in that case.
	if len(reviews) == 0 && offset > 0 {
		err := r.db.QueryRow(ctx,
			`SELECT count(*) FROM product_reviews WHERE product_id = $1`,
			productID,
		).Scan(&totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("count reviews: %w", err)
		}
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, totalCount, nil
}

// HasUserReview reports whether the user already reviewed the product.
func (r *ReviewRepository) HasUserReview(ctx context.Context, productID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM product_reviews WHERE product_id = $1 AND user_id = $2)`,
		productID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user review: %w", err)
	}
	return exists, nil
}

// GetSummary returns the rating aggregates stored on the product row.
func (r *ReviewRepository) GetSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	var summary domain.ReviewSummary
	err := r.db.QueryRow(ctx,
		`SELECT average_rating, ratings_count FROM products WHERE id = $1`,
		productID,
	).Scan(&summary.AverageRating, &summary.RatingsCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("get review summary: %w", err)
	}
	return &summary, nil
}
