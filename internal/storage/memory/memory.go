// Package memory implements storage.Storage with an in-memory map,
// used in tests and local development without blob credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/okandemir/storefront/internal/storage"
)

type blobEntry struct {
	ContentType string
	Size        int64
	URL         string
}

// Storage stores blob metadata only, no bytes.
type Storage struct {
	mu      sync.RWMutex
	blobs   map[string]*blobEntry
	baseURL string
}

// New creates an in-memory storage instance.
func New(baseURL string) *Storage {
	return &Storage{
		blobs:   make(map[string]*blobEntry),
		baseURL: baseURL,
	}
}

// Upload records blob metadata and returns a URL under the base URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := fmt.Sprintf("%s/%s", s.baseURL, input.Key)
	s.blobs[input.Key] = &blobEntry{
		ContentType: input.ContentType,
		Size:        input.Size,
		URL:         url,
	}

	return &storage.UploadResult{Key: input.Key, URL: url}, nil
}

// Delete removes blob metadata.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[key]; !exists {
		return fmt.Errorf("blob not found: %s", key)
	}
	delete(s.blobs, key)
	return nil
}

// Has reports whether a key is currently stored. Test helper.
func (s *Storage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok
}

// Len returns the number of stored blobs. Test helper.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
