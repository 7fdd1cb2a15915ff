package activity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/adxcore/orchestrator/internal/storage"
)

// UploadToStorageInput is the payload for the upload_to_storage activity.
// Content is base64-encoded since workflow inputs are JSON.
type UploadToStorageInput struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Content     string `json:"content_base64"`
	Provider    string `json:"provider,omitempty"`
}

// UploadToStorageOutput mirrors storage.PutResult plus a signed URL, if the
// backend supports generating one.
type UploadToStorageOutput struct {
	storage.PutResult
	SignedURL string `json:"signed_url,omitempty"`
}

// UploadToStorage is the first step of the file upload pipeline: it persists
// the raw bytes to object storage ahead of virus scanning and metadata
// extraction.
type UploadToStorage struct {
	registry *storage.Registry
	fallback string
}

// NewUploadToStorage constructs the upload_to_storage activity against a
// storage provider registry, defaulting to fallbackProvider when the input
// doesn't name one.
func NewUploadToStorage(registry *storage.Registry, fallbackProvider string) *UploadToStorage {
	return &UploadToStorage{registry: registry, fallback: fallbackProvider}
}

func (a *UploadToStorage) Name() string { return "upload_to_storage" }

func (a *UploadToStorage) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *UploadToStorage) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in UploadToStorageInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode upload_to_storage input: %w", err)
	}
	if in.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	providerName := in.Provider
	if providerName == "" {
		providerName = a.fallback
	}
	provider, err := a.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(in.Content)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	put, err := provider.Put(ctx, in.Key, in.ContentType, bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	out := UploadToStorageOutput{PutResult: *put}
	if url, err := provider.SignedURL(ctx, in.Key); err == nil {
		out.SignedURL = url
	}

	return json.Marshal(out)
}
