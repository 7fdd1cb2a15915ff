package activity

import (
	"context"
	"encoding/json"
	"fmt"
)

// Scanner scans stored content for malware, implemented by a real AV engine
// in production and a no-op pass-through in tests.
type Scanner interface {
	Scan(ctx context.Context, key string) (clean bool, signature string, err error)
}

// NoopScanner always reports content as clean; used when no scanning
// backend is configured.
type NoopScanner struct{}

func (NoopScanner) Scan(ctx context.Context, key string) (bool, string, error) {
	return true, "", nil
}

// VirusScanFileInput is the payload for the virus_scan_file activity.
type VirusScanFileInput struct {
	Key string `json:"key"`
}

// VirusScanFileOutput reports the scan outcome.
type VirusScanFileOutput struct {
	Clean     bool   `json:"clean"`
	Signature string `json:"signature,omitempty"`
}

// VirusScanFile runs after upload_to_storage and before the file is made
// available to end users.
type VirusScanFile struct {
	scanner Scanner
}

// NewVirusScanFile constructs the virus_scan_file activity.
func NewVirusScanFile(scanner Scanner) *VirusScanFile {
	if scanner == nil {
		scanner = NoopScanner{}
	}
	return &VirusScanFile{scanner: scanner}
}

func (a *VirusScanFile) Name() string { return "virus_scan_file" }

func (a *VirusScanFile) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *VirusScanFile) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in VirusScanFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode virus_scan_file input: %w", err)
	}
	if in.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	clean, sig, err := a.scanner.Scan(ctx, in.Key)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", in.Key, err)
	}

	return json.Marshal(VirusScanFileOutput{Clean: clean, Signature: sig})
}
