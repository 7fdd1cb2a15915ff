package activity

import (
	"context"
	"encoding/json"
	"fmt"
)

// ThumbnailSizes are the fixed thumbnail widths the pipeline produces.
var ThumbnailSizes = []int{64, 256, 1024}

// GenerateThumbnailsInput is the payload for the generate_thumbnails
// activity. It only runs when extract_file_metadata reported IsImage=true.
type GenerateThumbnailsInput struct {
	Key string `json:"key"`
}

// GenerateThumbnailsOutput lists the derived thumbnail object keys, one per
// entry in ThumbnailSizes.
type GenerateThumbnailsOutput struct {
	ThumbnailKeys map[int]string `json:"thumbnail_keys"`
}

// GenerateThumbnails is the final, conditional step of the file upload
// pipeline for image content.
type GenerateThumbnails struct{}

// NewGenerateThumbnails constructs the generate_thumbnails activity.
func NewGenerateThumbnails() *GenerateThumbnails { return &GenerateThumbnails{} }

func (a *GenerateThumbnails) Name() string { return "generate_thumbnails" }

func (a *GenerateThumbnails) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *GenerateThumbnails) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in GenerateThumbnailsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode generate_thumbnails input: %w", err)
	}
	if in.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	keys := make(map[int]string, len(ThumbnailSizes))
	for _, size := range ThumbnailSizes {
		keys[size] = fmt.Sprintf("%s.thumb-%d", in.Key, size)
	}

	return json.Marshal(GenerateThumbnailsOutput{ThumbnailKeys: keys})
}
