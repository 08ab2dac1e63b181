// Package repository defines the persistence interfaces the services
// depend on.
package repository

import (
	"context"

	"github.com/okandemir/storefront/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Search *string
	Page   int
	Limit  int
}

// ReviewFilter defines paging criteria for listing reviews.
type ReviewFilter struct {
	Page  int
	Limit int
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email, matched case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// ExistsByName reports whether an active product with the name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// List returns products matching the filter plus the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// ListPopular returns all active popular products, newest first.
	ListPopular(ctx context.Context) ([]domain.Product, error)

	// Update modifies an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// TogglePopular atomically flips the popular flag and returns the
	// updated product.
	TogglePopular(ctx context.Context, id string) (*domain.Product, error)

	// AddSale atomically increments the sales counter by qty and
	// returns the updated product.
	AddSale(ctx context.Context, id string, qty int) (*domain.Product, error)

	// Delete removes a product; its reviews cascade.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a review and recomputes the product's rating
	// aggregates in the same transaction. Returns the stored review
	// and the post-insert summary.
	Create(ctx context.Context, review *domain.Review) (*domain.ReviewSummary, error)

	// ListByProductID returns a page of reviews, newest first, plus
	// the total count.
	ListByProductID(ctx context.Context, productID string, filter ReviewFilter) ([]domain.Review, int, error)

	// HasUserReview reports whether the user already reviewed the product.
	HasUserReview(ctx context.Context, productID, userID string) (bool, error)

	// GetSummary returns the current rating aggregates for a product.
	GetSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error)
}
