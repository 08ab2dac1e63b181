package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/repository"
	"github.com/okandemir/storefront/pkg/database"
	apperrors "github.com/okandemir/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, description, price, images, sales_count, is_active, is_popular, average_rating, ratings_count, created_at, updated_at`

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := marshalImages(p.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, description, price, images, sales_count, is_active, is_popular, average_rating, ratings_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		imagesJSON,
		p.SalesCount,
		p.IsActive,
		p.IsPopular,
		p.AverageRating,
		p.RatingsCount,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "name", p.Name)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanProduct(id, r.db.QueryRow(ctx, query, id))
}

// ExistsByName reports whether an active product with the name exists.
func (r *ProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE LOWER(name) = LOWER($1) AND is_active)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product name: %w", err)
	}
	return exists, nil
}

// List returns active products matching the filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions = []string{"is_active"}
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	// count(*) OVER() returns the total in the same query.
	query := fmt.Sprintf(`
		SELECT `+productColumns+`,
			   count(*) OVER() AS total_count
		FROM products
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		var (
			p          domain.Product
			imagesJSON []byte
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&imagesJSON,
			&p.SalesCount,
			&p.IsActive,
			&p.IsPopular,
			&p.AverageRating,
			&p.RatingsCount,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		if err := unmarshalImages(imagesJSON, &p.Images); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	// An empty page past the last row yields no rows at all, so the
	// window total never gets scanned. Count separately in that case.
	if len(products) == 0 && offset > 0 {
		countQuery := fmt.Sprintf(
			`SELECT count(*) FROM products WHERE %s`,
			strings.Join(conditions, " AND "),
		)
		if err := r.db.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, totalCount, nil
}

// ListPopular returns all active popular products, newest first.
func (r *ProductRepository) ListPopular(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active AND is_popular
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list popular products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p          domain.Product
			imagesJSON []byte
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&imagesJSON,
			&p.SalesCount,
			&p.IsActive,
			&p.IsPopular,
			&p.AverageRating,
			&p.RatingsCount,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		if err := unmarshalImages(imagesJSON, &p.Images); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := marshalImages(p.Images)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, images = $4,
		    is_active = $5, is_popular = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Price,
		imagesJSON,
		p.IsActive,
		p.IsPopular,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "name", p.Name)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// TogglePopular atomically flips the popular flag.
func (r *ProductRepository) TogglePopular(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		UPDATE products
		SET is_popular = NOT is_popular, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	return r.scanProduct(id, r.db.QueryRow(ctx, query, id))
}

// AddSale atomically increments the sales counter by qty.
func (r *ProductRepository) AddSale(ctx context.Context, id string, qty int) (*domain.Product, error) {
	query := `
		UPDATE products
		SET sales_count = sales_count + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	return r.scanProduct(id, r.db.QueryRow(ctx, query, id, qty))
}

// Delete removes a product; reviews cascade via the schema.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

func (r *ProductRepository) scanProduct(id string, row pgx.Row) (*domain.Product, error) {
	var (
		p          domain.Product
		imagesJSON []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&imagesJSON,
		&p.SalesCount,
		&p.IsActive,
		&p.IsPopular,
		&p.AverageRating,
		&p.RatingsCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if err := unmarshalImages(imagesJSON, &p.Images); err != nil {
		return nil, err
	}
	return &p, nil
}

func marshalImages(images []domain.ProductImage) ([]byte, error) {
	if images == nil {
		images = []domain.ProductImage{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	return data, nil
}

func unmarshalImages(data []byte, into *[]domain.ProductImage) error {
	*into = []domain.ProductImage{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("unmarshal images: %w", err)
	}
	return nil
}
