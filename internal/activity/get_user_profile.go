package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/adxcore/orchestrator/internal/tenant"
)

// GetUserProfileInput is the payload for the get_user_profile activity.
type GetUserProfileInput struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Roles    []string `json:"roles,omitempty"`
}

// GetUserProfileOutput is a read-only view combining the caller's identity
// with their current tenant's plan, assembled fast enough for the
// gateway's synchronous allowlist.
type GetUserProfileOutput struct {
	UserID     string   `json:"user_id"`
	TenantID   string   `json:"tenant_id"`
	TenantSlug string   `json:"tenant_slug"`
	Tier       string   `json:"tier"`
	Roles      []string `json:"roles"`
}

// GetUserProfile backs the gateway's allowlisted "get_user_profile" fast
// path: a single tenant lookup, no workflow-level side effects.
type GetUserProfile struct {
	tenantRepo tenant.Repository
}

func NewGetUserProfile(tenantRepo tenant.Repository) *GetUserProfile {
	return &GetUserProfile{tenantRepo: tenantRepo}
}

func (g *GetUserProfile) Name() string { return "get_user_profile" }

func (g *GetUserProfile) DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (g *GetUserProfile) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in GetUserProfileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("get_user_profile: invalid input: %w", err)
	}

	id, err := uuid.Parse(in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("get_user_profile: invalid tenant id: %w", err)
	}

	t, err := g.tenantRepo.GetTenantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_user_profile: %w", err)
	}

	return json.Marshal(GetUserProfileOutput{
		UserID:     in.UserID,
		TenantID:   in.TenantID,
		TenantSlug: t.Slug,
		Tier:       string(t.Tier),
		Roles:      in.Roles,
	})
}
