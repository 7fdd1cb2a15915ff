package models

import (
	"time"

	"github.com/adxcore/orchestrator/internal/tenant"
)

// CreateTenantRequest represents the request body for onboarding a new tenant
type CreateTenantRequest struct {
	// Name is the human-friendly display name for the tenant
	Name string `json:"name" validate:"required,min=1,max=255"`

	// Slug is the unique URL-safe identifier for the tenant
	Slug string `json:"slug" validate:"required,min=1,max=63"`

	// Tier selects the subscription tier, which determines default quotas
	Tier string `json:"tier" validate:"required,oneof=free starter professional enterprise custom"`

	// IsolationLevel selects the data isolation strategy for the tenant
	IsolationLevel string `json:"isolation_level,omitempty" validate:"omitempty,oneof=row schema database"`

	// Features are feature-flag toggles enabled for this tenant
	Features map[string]bool `json:"features,omitempty"`

	// Settings holds tenant-level preferences (timezone, locale, security policy)
	Settings map[string]interface{} `json:"settings,omitempty"`

	// DesiredConfig is tenant-specific configuration used by provisioning workflows
	DesiredConfig map[string]interface{} `json:"desired_config,omitempty"`

	// Labels are key-value pairs for organizing tenants
	Labels map[string]string `json:"labels,omitempty"`

	// Annotations are key-value pairs for metadata
	Annotations map[string]string `json:"annotations,omitempty"`
}

// UpdateTenantRequest represents the request body for updating a tenant
type UpdateTenantRequest struct {
	// Name is the updated display name (optional for updates)
	Name *string `json:"name,omitempty"`

	// Tier requests a tier change; triggers an upgrade/downgrade workflow
	Tier *string `json:"tier,omitempty" validate:"omitempty,oneof=free starter professional enterprise custom"`

	// Features updates feature-flag toggles
	Features map[string]bool `json:"features,omitempty"`

	// DesiredConfig is tenant-specific configuration (optional for updates)
	DesiredConfig map[string]interface{} `json:"desired_config,omitempty"`

	// Labels are key-value pairs for organizing tenants (optional for updates)
	Labels map[string]string `json:"labels,omitempty"`

	// Annotations are key-value pairs for metadata (optional for updates)
	Annotations map[string]string `json:"annotations,omitempty"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Tier           string                 `json:"tier"`
	IsolationLevel string                 `json:"isolation_level"`
	Features       map[string]bool        `json:"features,omitempty"`
	Quotas         tenant.Quotas          `json:"quotas"`
	Status         string                 `json:"status"`
	StatusMessage  string                 `json:"status_message,omitempty"`
	DesiredConfig  map[string]interface{} `json:"desired_config,omitempty"`
	ObservedConfig map[string]interface{} `json:"observed_config,omitempty"`

	// WorkflowExecutionID is the ID of the current or last workflow execution
	WorkflowExecutionID *string `json:"workflow_execution_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`

	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// ListTenantsResponse represents a paginated list of tenants
type ListTenantsResponse struct {
	Tenants []TenantResponse `json:"tenants"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// ToTenantResponse converts a domain tenant to an API response
func ToTenantResponse(t *tenant.Tenant) TenantResponse {
	return TenantResponse{
		ID:                  t.ID.String(),
		Name:                t.Name,
		Slug:                t.Slug,
		Tier:                string(t.Tier),
		IsolationLevel:      string(t.IsolationLevel),
		Features:            t.Features,
		Quotas:              t.Quotas,
		Status:              string(t.Status),
		StatusMessage:       t.StatusMessage,
		DesiredConfig:       t.DesiredConfig,
		ObservedConfig:      t.ObservedConfig,
		WorkflowExecutionID: t.WorkflowExecutionID,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
		Version:             t.Version,
		Labels:              t.Labels,
		Annotations:         t.Annotations,
	}
}

// FromCreateRequest converts a create request to a domain tenant
func FromCreateRequest(req *CreateTenantRequest) (*tenant.Tenant, error) {
	tier := tenant.Tier(req.Tier)

	isolation := tenant.IsolationRow
	if req.IsolationLevel != "" {
		isolation = tenant.IsolationLevel(req.IsolationLevel)
	}

	t := &tenant.Tenant{
		Name:           req.Name,
		Slug:           req.Slug,
		Tier:           tier,
		IsolationLevel: isolation,
		Features:       req.Features,
		Quotas:         tenant.DefaultQuotasForTier(tier),
		Status:         tenant.StatusProvisioning,
		Labels:         req.Labels,
		Annotations:    req.Annotations,
	}

	if req.DesiredConfig != nil {
		t.DesiredConfig = copyInterfaceMap(req.DesiredConfig)
	}

	return t, nil
}

// ApplyUpdateRequest applies an update request to an existing tenant
func ApplyUpdateRequest(t *tenant.Tenant, req *UpdateTenantRequest) error {
	if req.Name != nil {
		t.Name = *req.Name
	}

	if req.Tier != nil {
		t.Tier = tenant.Tier(*req.Tier)
	}

	if req.Features != nil {
		t.Features = req.Features
	}

	if req.DesiredConfig != nil {
		t.DesiredConfig = copyInterfaceMap(req.DesiredConfig)
	}

	if req.Labels != nil {
		t.Labels = req.Labels
	}

	if req.Annotations != nil {
		t.Annotations = req.Annotations
	}

	return nil
}

func copyInterfaceMap(input map[string]interface{}) map[string]interface{} {
	if input == nil {
		return nil
	}
	output := make(map[string]interface{}, len(input))
	for k, v := range input {
		output[k] = v
	}
	return output
}
