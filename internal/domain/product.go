package domain

import (
	"time"
)

// MaxProductImages caps the number of images attached to a product.
const MaxProductImages = 5

// ProductImage is one entry of a product's ordered image list. The
// list is stored as a JSONB column on the products row.
type ProductImage struct {
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
	IsPrimary  bool   `json:"is_primary"`
}

// Product represents a catalog item.
type Product struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Price         float64        `json:"price"`
	Images        []ProductImage `json:"images"`
	SalesCount    int64          `json:"sales_count"`
	IsActive      bool           `json:"is_active"`
	IsPopular     bool           `json:"is_popular"`
	AverageRating float64        `json:"average_rating"`
	RatingsCount  int            `json:"ratings_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PrimaryImage returns the image marked primary, or the first image
// when none is marked. Returns nil for a product with no images.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}
