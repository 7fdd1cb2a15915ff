package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DeletionMethod is how a retention policy disposes of an aged resource.
type DeletionMethod string

const (
	DeletionMethodSoftDelete DeletionMethod = "soft_delete"
	DeletionMethodHardDelete DeletionMethod = "hard_delete"
	DeletionMethodAnonymize  DeletionMethod = "anonymize"
	DeletionMethodArchive    DeletionMethod = "archive"
)

// RetentionPolicy governs one (tenant, resource_type) pair: resources
// older than RetentionPeriodDays are disposed of via Method.
type RetentionPolicy struct {
	TenantID           string         `json:"tenant_id"`
	ResourceType       string         `json:"resource_type"`
	RetentionPeriodDays int           `json:"retention_period_days"`
	Method             DeletionMethod `json:"method"`
}

// ResourceRef is a single resource a retention sweep considers, with its
// age-determining timestamp.
type ResourceRef struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplyRetentionPolicyInput sweeps Resources against Policy, applying
// Method to every resource whose age exceeds RetentionPeriodDays.
type ApplyRetentionPolicyInput struct {
	Policy    RetentionPolicy `json:"policy"`
	Resources []ResourceRef   `json:"resources"`
}

// ApplyRetentionPolicyOutput reports sweep progress.
type ApplyRetentionPolicyOutput struct {
	RecordsProcessed int `json:"records_processed"`
	RecordsDeleted   int `json:"records_deleted"`
}

// ApplyRetentionPolicy is the per-sweep unit of work a scheduled retention
// job invokes for one (tenant, resource_type) policy. The actual
// soft-delete/hard-delete/anonymize/archive side effect against the
// resource's owning store is left to the caller-supplied Disposer, since
// "resource" spans tenants, users, files, and audit entries each with
// their own storage.
type ApplyRetentionPolicy struct {
	dispose Disposer
}

// Disposer performs the side-effecting half of a retention sweep: actually
// deleting/anonymizing/archiving one resource via its owning store.
type Disposer func(ctx context.Context, resourceType string, resourceID string, method DeletionMethod) error

// NewApplyRetentionPolicy constructs the apply_retention_policy activity.
func NewApplyRetentionPolicy(dispose Disposer) *ApplyRetentionPolicy {
	return &ApplyRetentionPolicy{dispose: dispose}
}

func (a *ApplyRetentionPolicy) Name() string { return "apply_retention_policy" }

func (a *ApplyRetentionPolicy) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *ApplyRetentionPolicy) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in ApplyRetentionPolicyInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode apply_retention_policy input: %w", err)
	}

	threshold := time.Now().UTC().AddDate(0, 0, -in.Policy.RetentionPeriodDays)
	out := ApplyRetentionPolicyOutput{}

	for _, res := range in.Resources {
		out.RecordsProcessed++
		if res.CreatedAt.After(threshold) {
			continue
		}
		if a.dispose != nil {
			if err := a.dispose(ctx, in.Policy.ResourceType, res.ID, in.Policy.Method); err != nil {
				return nil, fmt.Errorf("dispose resource %s: %w", res.ID, err)
			}
		}
		out.RecordsDeleted++
	}

	return json.Marshal(out)
}
