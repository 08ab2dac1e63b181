package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okandemir/storefront/internal/cache"
	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/event"
	"github.com/okandemir/storefront/internal/repository"
	"github.com/okandemir/storefront/internal/storage"
	apperrors "github.com/okandemir/storefront/pkg/errors"
)

const imageKeyPrefix = "products/"

// ImageUpload is one image file attached to a create or update request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	IsPopular   bool
	Images      []ImageUpload
}

// UpdateProductInput holds the parameters for a partial product update.
// Nil fields are left unchanged. A non-empty Images slice replaces the
// whole image list.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	IsPopular   *bool
	IsActive    *bool
	Images      []ImageUpload
}

// ListProductsInput holds catalog listing parameters.
type ListProductsInput struct {
	Search string
	Page   int
	Limit  int
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Items []domain.Product
	Page  int
	Limit int
	Total int
}

// ProductService implements the catalog business logic.
type ProductService struct {
	productRepo repository.ProductRepository
	storage     storage.Storage
	popular     *cache.PopularCache
	events      *event.Publisher
	logger      *slog.Logger

	nameUnique bool
}

// NewProductService creates a product service. nameUnique enables the
// product name uniqueness pre-check.
func NewProductService(
	productRepo repository.ProductRepository,
	store storage.Storage,
	popular *cache.PopularCache,
	events *event.Publisher,
	logger *slog.Logger,
	nameUnique bool,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		storage:     store,
		popular:     popular,
		events:      events,
		logger:      logger,
		nameUnique:  nameUnique,
	}
}

// Create validates the input, uploads the images, and inserts the
// product. The image cap is checked before any byte is uploaded, so a
// rejected request leaves no partial state behind.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if len(input.Images) > domain.MaxProductImages {
		return nil, apperrors.InvalidInput(fmt.Sprintf("a product can have at most %d images", domain.MaxProductImages))
	}

	if s.nameUnique {
		exists, err := s.productRepo.ExistsByName(ctx, input.Name)
		if err != nil {
			return nil, fmt.Errorf("check product name: %w", err)
		}
		if exists {
			return nil, apperrors.AlreadyExists("product", "name", input.Name)
		}
	}

	images, err := s.uploadImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Images:      images,
		IsActive:    true,
		IsPopular:   input.IsPopular,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		// The row never landed, so the uploaded blobs are orphans.
		s.deleteBlobs(ctx, product.Images)
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.popular.Invalidate(ctx)
	s.events.ProductCreated(ctx, product)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
		slog.Int("images", len(product.Images)),
	)

	return product, nil
}

// Get returns a product by ID.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return product, nil
}

// List returns a page of active products, optionally filtered by a
// case-insensitive substring search over name and description.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ProductPage, error) {
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

	filter := repository.ProductFilter{Page: page, Limit: limit}
	if input.Search != "" {
		search := input.Search
		filter.Search = &search
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &ProductPage{Items: products, Page: page, Limit: limit, Total: total}, nil
}

// ListPopular returns the popular listing, served from cache when warm.
func (s *ProductService) ListPopular(ctx context.Context) ([]domain.Product, error) {
	if products, ok := s.popular.Get(ctx); ok {
		return products, nil
	}

	products, err := s.productRepo.ListPopular(ctx)
	if err != nil {
		return nil, fmt.Errorf("list popular products: %w", err)
	}

	s.popular.Set(ctx, products)
	return products, nil
}

// Update applies a partial update. When new images are supplied the
// whole image list is replaced and the old blobs deleted best-effort.
func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	if input.Price != nil && *input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if len(input.Images) > domain.MaxProductImages {
		return nil, apperrors.InvalidInput(fmt.Sprintf("a product can have at most %d images", domain.MaxProductImages))
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		if s.nameUnique && !strings.EqualFold(name, product.Name) {
			exists, err := s.productRepo.ExistsByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("check product name: %w", err)
			}
			if exists {
				return nil, apperrors.AlreadyExists("product", "name", name)
			}
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.IsPopular != nil {
		product.IsPopular = *input.IsPopular
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	var oldImages []domain.ProductImage
	if len(input.Images) > 0 {
		images, err := s.uploadImages(ctx, input.Images)
		if err != nil {
			return nil, err
		}
		oldImages = product.Images
		product.Images = images
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if len(input.Images) > 0 {
			s.deleteBlobs(ctx, product.Images)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.deleteBlobs(ctx, oldImages)
	s.popular.Invalidate(ctx)
	s.events.ProductUpdated(ctx, product)

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", product.ID))

	return product, nil
}

// TogglePopular atomically flips the popular flag and returns the
// updated product plus a human-readable message.
func (s *ProductService) TogglePopular(ctx context.Context, id string) (*domain.Product, string, error) {
	product, err := s.productRepo.TogglePopular(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("toggle popular %s: %w", id, err)
	}

	message := "product marked as not popular"
	if product.IsPopular {
		message = "product marked as popular"
	}

	s.popular.Invalidate(ctx)
	s.events.ProductUpdated(ctx, product)

	return product, message, nil
}

// AddSale increments the sales counter. Quantities below one are
// floored to one.
func (s *ProductService) AddSale(ctx context.Context, id string, qty int) (*domain.Product, error) {
	if qty < 1 {
		qty = 1
	}

	product, err := s.productRepo.AddSale(ctx, id, qty)
	if err != nil {
		return nil, fmt.Errorf("add sale %s: %w", id, err)
	}

	s.events.ProductSold(ctx, id, qty, product.SalesCount)

	s.logger.InfoContext(ctx, "sale recorded",
		slog.String("product_id", id),
		slog.Int("quantity", qty),
		slog.Int64("sales_count", product.SalesCount),
	)

	return product, nil
}

// Delete removes the product. Attached blobs are deleted first,
// best-effort; a failing blob delete never blocks the row delete.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product %s: %w", id, err)
	}

	s.deleteBlobs(ctx, product.Images)

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.popular.Invalidate(ctx)
	s.events.ProductDeleted(ctx, id)

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))

	return nil
}

// RemoveImage deletes one image by its position in the image list.
func (s *ProductService) RemoveImage(ctx context.Context, id string, index int) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	if index < 0 || index >= len(product.Images) {
		return nil, apperrors.InvalidInput("image index out of range")
	}

	removed := product.Images[index]
	product.Images = append(product.Images[:index], product.Images[index+1:]...)

	// When the primary image goes away the first remaining one takes over.
	if removed.IsPrimary && len(product.Images) > 0 {
		product.Images[0].IsPrimary = true
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.deleteBlobs(ctx, []domain.ProductImage{removed})
	s.popular.Invalidate(ctx)
	s.events.ProductUpdated(ctx, product)

	return product, nil
}

// SetPrimaryImage marks the image at index as primary and clears the
// flag on every other image.
func (s *ProductService) SetPrimaryImage(ctx context.Context, id string, index int) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	if index < 0 || index >= len(product.Images) {
		return nil, apperrors.InvalidInput("image index out of range")
	}

	for i := range product.Images {
		product.Images[i].IsPrimary = i == index
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.popular.Invalidate(ctx)
	s.events.ProductUpdated(ctx, product)

	return product, nil
}

// uploadImages stores every image under a fresh uuid key. The first
// image is marked primary.
func (s *ProductService) uploadImages(ctx context.Context, uploads []ImageUpload) ([]domain.ProductImage, error) {
	images := make([]domain.ProductImage, 0, len(uploads))
	for i, up := range uploads {
		key := imageKeyPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(up.Filename))

		result, err := s.storage.Upload(ctx, &storage.UploadInput{
			Key:         key,
			ContentType: up.ContentType,
			Size:        up.Size,
			Data:        up.Data,
		})
		if err != nil {
			// Roll back what already made it up.
			s.deleteBlobs(ctx, images)
			return nil, fmt.Errorf("upload image %s: %w", up.Filename, err)
		}

		images = append(images, domain.ProductImage{
			URL:        result.URL,
			StorageKey: result.Key,
			IsPrimary:  i == 0,
		})
	}
	return images, nil
}

// deleteBlobs removes blobs best-effort; failures are logged only.
func (s *ProductService) deleteBlobs(ctx context.Context, images []domain.ProductImage) {
	for _, img := range images {
		if img.StorageKey == "" {
			continue
		}
		if err := s.storage.Delete(ctx, img.StorageKey); err != nil {
			s.logger.WarnContext(ctx, "blob delete failed",
				slog.String("storage_key", img.StorageKey),
				slog.String("error", err.Error()),
			)
		}
	}
}
