// Package storage abstracts object storage backends used by the file
// upload pipeline (S3-compatible object storage and a local-disk backend
// for development and tests).
package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// PutResult describes a stored object.
type PutResult struct {
	Key          string `json:"key"`
	Bucket       string `json:"bucket,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	ETag         string `json:"etag,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	StorageClass string `json:"storage_class,omitempty"`
}

// Provider is the interface every storage backend implements.
type Provider interface {
	// Name returns the unique provider identifier, e.g. "s3" or "local".
	Name() string

	// Put stores an object and returns its location metadata.
	Put(ctx context.Context, key string, contentType string, body io.Reader, size int64) (*PutResult, error)

	// Get retrieves an object's contents.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a time-limited URL for direct client access, if the
	// backend supports it; returns an empty string if it doesn't.
	SignedURL(ctx context.Context, key string) (string, error)
}

var (
	// ErrNotFound is returned when a requested object doesn't exist.
	ErrNotFound = fmt.Errorf("object not found")
	// ErrConflict is returned when registering a duplicate provider name.
	ErrConflict = fmt.Errorf("storage provider already registered")
)

// Registry holds configured storage providers, following the same
// register/get/list shape used by the workflow provider registry.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty storage provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a storage provider.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if name == "" {
		return fmt.Errorf("storage provider name cannot be empty")
	}
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrConflict, name)
	}
	r.providers[name] = p
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("storage provider not found: %s", name)
	}
	return p, nil
}

// List returns registered provider names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
