// Package storage defines the blob storage interface backing product
// images.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for blob storage operations.
type Storage interface {
	// Upload stores a blob and returns its key and public URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes a blob by its key.
	Delete(ctx context.Context, key string) error
}

// UploadInput holds the parameters for uploading a blob.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}
