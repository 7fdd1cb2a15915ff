package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/adxcore/orchestrator/internal/storage"
)

// ExtractFileMetadataInput is the payload for the extract_file_metadata
// activity.
type ExtractFileMetadataInput struct {
	Key      string `json:"key"`
	Provider string `json:"provider,omitempty"`
}

// ExtractFileMetadataOutput carries the derived metadata.
type ExtractFileMetadataOutput struct {
	SizeBytes int64  `json:"size_bytes"`
	Extension string `json:"extension,omitempty"`
	IsImage   bool   `json:"is_image"`
}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

// ExtractFileMetadata derives structural metadata from an uploaded object,
// feeding the conditional generate_thumbnails step.
type ExtractFileMetadata struct {
	registry *storage.Registry
	fallback string
}

// NewExtractFileMetadata constructs the extract_file_metadata activity.
func NewExtractFileMetadata(registry *storage.Registry, fallbackProvider string) *ExtractFileMetadata {
	return &ExtractFileMetadata{registry: registry, fallback: fallbackProvider}
}

func (a *ExtractFileMetadata) Name() string { return "extract_file_metadata" }

func (a *ExtractFileMetadata) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *ExtractFileMetadata) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in ExtractFileMetadataInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode extract_file_metadata input: %w", err)
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

	rc, err := provider.Get(ctx, in.Key)
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", in.Key, err)
	}
	defer rc.Close()

	n, err := io.Copy(io.Discard, rc)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", in.Key, err)
	}

	ext := ""
	if idx := strings.LastIndex(in.Key, "."); idx != -1 {
		ext = strings.ToLower(in.Key[idx+1:])
	}

	return json.Marshal(ExtractFileMetadataOutput{
		SizeBytes: n,
		Extension: ext,
		IsImage:   imageExtensions[ext],
	})
}
