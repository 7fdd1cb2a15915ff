package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adxcore/orchestrator/internal/audit"
	"github.com/adxcore/orchestrator/internal/storage"
)

// VerifyGDPRTokenInput challenges the requester before a destructive GDPR
// operation proceeds.
type VerifyGDPRTokenInput struct {
	Token    string `json:"token"`
	Expected string `json:"expected_token"`
}

// VerifyGDPRToken confirms the requester's verification token matches
// before an export or deletion is allowed to run.
type VerifyGDPRToken struct{}

func NewVerifyGDPRToken() *VerifyGDPRToken { return &VerifyGDPRToken{} }

func (a *VerifyGDPRToken) Name() string { return "verify_gdpr_token" }

func (a *VerifyGDPRToken) DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (a *VerifyGDPRToken) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in VerifyGDPRTokenInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode verify_gdpr_token input: %w", err)
	}
	if in.Token == "" || in.Token != in.Expected {
		return nil, fmt.Errorf("gdpr verification token mismatch")
	}
	return json.Marshal(map[string]bool{"verified": true})
}

// ExportTenantArchiveInput requests a consolidated export of one tenant's
// audit trail into a downloadable archive.
type ExportTenantArchiveInput struct {
	TenantID        string `json:"tenant_id"`
	StorageProvider string `json:"storage_provider"`
}

// ExportTenantArchiveOutput is the archive's storage key and a
// time-limited download URL.
type ExportTenantArchiveOutput struct {
	Key       string `json:"key"`
	SignedURL string `json:"signed_url"`
}

// ExportTenantArchive gathers a tenant's audit history into a single JSON
// archive and uploads it to object storage, returning a signed download
// URL. Profile/file/activity data is folded in by the gateway before
// dispatch (audit is the one cross-cutting store this activity library
// owns directly); this activity's job is the audit-subset plus packaging.
type ExportTenantArchive struct {
	audit   *audit.Logger
	storage *storage.Registry
}

func NewExportTenantArchive(auditLogger *audit.Logger, storageRegistry *storage.Registry) *ExportTenantArchive {
	return &ExportTenantArchive{audit: auditLogger, storage: storageRegistry}
}

func (a *ExportTenantArchive) Name() string { return "export_tenant_archive" }

func (a *ExportTenantArchive) DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BackoffRate: 2, InitialInterval: 10 * time.Second, MaxInterval: 60 * time.Second}
}

func (a *ExportTenantArchive) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in ExportTenantArchiveInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode export_tenant_archive input: %w", err)
	}

	entries, err := a.audit.ExportTenantData(ctx, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("export tenant audit data: %w", err)
	}
	archive, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal tenant archive: %w", err)
	}

	provider, err := a.storage.Get(in.StorageProvider)
	if err != nil {
		return nil, fmt.Errorf("resolve storage provider: %w", err)
	}

	key := fmt.Sprintf("gdpr-exports/%s-%d.json", in.TenantID, time.Now().UTC().Unix())
	if _, err := provider.Put(ctx, key, "application/json", bytes.NewReader(archive), int64(len(archive))); err != nil {
		return nil, fmt.Errorf("upload tenant archive: %w", err)
	}
	signedURL, err := provider.SignedURL(ctx, key)
	if err != nil {
		signedURL = ""
	}

	return json.Marshal(ExportTenantArchiveOutput{Key: key, SignedURL: signedURL})
}

// DeleteTenantDataInput requests deletion of a tenant's data across stores.
type DeleteTenantDataInput struct {
	TenantID string `json:"tenant_id"`
}

// DeleteTenantData deletes a tenant's audit trail. Upstream services
// (files, profile) are expected to have already run their own deletion
// steps earlier in the workflow's reverse-dependency order; audit is
// deleted last since it's the record of the deletion itself up to this
// point.
type DeleteTenantData struct {
	audit *audit.Logger
}

func NewDeleteTenantData(auditLogger *audit.Logger) *DeleteTenantData {
	return &DeleteTenantData{audit: auditLogger}
}

func (a *DeleteTenantData) Name() string { return "delete_tenant_data" }

func (a *DeleteTenantData) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *DeleteTenantData) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in DeleteTenantDataInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode delete_tenant_data input: %w", err)
	}
	if err := a.audit.DeleteTenantData(ctx, in.TenantID); err != nil {
		return nil, fmt.Errorf("delete tenant audit data: %w", err)
	}
	return json.Marshal(map[string]bool{"deleted": true})
}
