package tenant

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// slugPattern validates that a tenant slug is lowercase alphanumeric with hyphens
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Tier is the subscription plan a tenant is billed under
type Tier string

const (
	TierFree         Tier = "free"
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
	TierCustom       Tier = "custom"
)

// IsValid reports whether t is one of the known subscription tiers
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierStarter, TierProfessional, TierEnterprise, TierCustom:
		return true
	default:
		return false
	}
}

// IsolationLevel describes how a tenant's data is physically separated from others
type IsolationLevel string

const (
	// IsolationRow: tenant rows share tables, scoped by tenant_id column
	IsolationRow IsolationLevel = "row"
	// IsolationSchema: tenant has a dedicated database schema
	IsolationSchema IsolationLevel = "schema"
	// IsolationDatabase: tenant has a dedicated database/connection pool
	IsolationDatabase IsolationLevel = "database"
)

// IsValid reports whether l is a known isolation level
func (l IsolationLevel) IsValid() bool {
	switch l {
	case IsolationRow, IsolationSchema, IsolationDatabase:
		return true
	default:
		return false
	}
}

// Status represents a tenant's position in its lifecycle
type Status string

const (
	// StatusProvisioning: tenant has been requested and is being set up
	// Next states: StatusActive, StatusDeleted
	StatusProvisioning Status = "provisioning"

	// StatusActive: tenant is operational and may use the platform
	// Next states: StatusSuspended, StatusUpgrading, StatusDowngrading, StatusMaintenance, StatusDeleted
	StatusActive Status = "active"

	// StatusSuspended: tenant access is blocked (billing failure, abuse, admin action)
	// Next states: StatusActive, StatusDeleted
	StatusSuspended Status = "suspended"

	// StatusUpgrading: tenant is mid-transition to a higher subscription tier
	// Next states: StatusActive, StatusDeleted
	StatusUpgrading Status = "upgrading"

	// StatusDowngrading: tenant is mid-transition to a lower subscription tier
	// Next states: StatusActive, StatusDeleted
	StatusDowngrading Status = "downgrading"

	// StatusMaintenance: tenant is temporarily read-only for a migration or repair
	// Next states: StatusActive, StatusDeleted
	StatusMaintenance Status = "maintenance"

	// StatusDeleted: tenant has been removed; record retained for audit purposes
	// Terminal state
	StatusDeleted Status = "deleted"
)

// ValidTransitions defines allowed state transitions.
//
// Invariant: transitions are monotone (Provisioning -> Active -> {Upgrading,
// Downgrading, Maintenance} -> Active -> ... -> Deleted) except that Active
// and Suspended transition back and forth freely.
var ValidTransitions = map[Status][]Status{
	StatusProvisioning: {StatusActive, StatusDeleted},
	StatusActive:       {StatusSuspended, StatusUpgrading, StatusDowngrading, StatusMaintenance, StatusDeleted},
	StatusSuspended:    {StatusActive, StatusDeleted},
	StatusUpgrading:    {StatusActive, StatusDeleted},
	StatusDowngrading:  {StatusActive, StatusDeleted},
	StatusMaintenance:  {StatusActive, StatusDeleted},
	StatusDeleted:      {},
}

// IsValid checks if a status is a known valid status
func (s Status) IsValid() bool {
	switch s {
	case StatusProvisioning, StatusActive, StatusSuspended,
		StatusUpgrading, StatusDowngrading, StatusMaintenance, StatusDeleted:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if this status is terminal (no further transitions)
func (s Status) IsTerminal() bool {
	return s == StatusDeleted
}

// IsHealthy returns true if a tenant in this status may serve requests
func (s Status) IsHealthy() bool {
	return s == StatusActive
}

// CanTransition checks if a transition is valid
func (s Status) CanTransition(to Status) bool {
	allowed, exists := ValidTransitions[s]
	if !exists {
		return false
	}
	for _, valid := range allowed {
		if valid == to {
			return true
		}
	}
	return false
}

// Quotas bounds the resources a tenant may consume. Zero sets no
// tenant-specific limit; for the AI fields the quota package's
// per-capability hourly defaults still apply.
type Quotas struct {
	MaxUsers          int `json:"max_users"`
	MaxStorageBytes   int64 `json:"max_storage_bytes"`
	MaxWorkflowRuns   int `json:"max_workflow_runs_per_day"`
	MaxAIRequestsHour int `json:"max_ai_requests_per_hour"`
	MaxAITokensHour   int `json:"max_ai_tokens_per_hour"`
}

// SecurityPolicy captures tenant-level security posture
type SecurityPolicy struct {
	RequireMFA           bool     `json:"require_mfa"`
	PasswordMinLength    int      `json:"password_min_length"`
	SessionTimeoutMins   int      `json:"session_timeout_minutes"`
	AllowedIPRanges      []string `json:"allowed_ip_ranges,omitempty"`
	SingleSignOnEnforced bool     `json:"single_sign_on_enforced"`
}

// Settings holds tenant preferences that are not part of the billing plan
type Settings struct {
	Timezone       string         `json:"timezone"`
	Locale         string         `json:"locale"`
	SecurityPolicy SecurityPolicy `json:"security_policy"`
}

// Value implements driver.Valuer so Quotas can be stored as JSONB
func (q Quotas) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner so Quotas can be read back from JSONB
func (q *Quotas) Scan(src interface{}) error {
	return scanJSON(src, q)
}

// Value implements driver.Valuer so Settings can be stored as JSONB
func (s Settings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner so Settings can be read back from JSONB
func (s *Settings) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}

// DefaultQuotasForTier returns the baseline quota set for a subscription tier.
// These are starting points; a tenant's Quotas field may be customized beyond them.
func DefaultQuotasForTier(tier Tier) Quotas {
	switch tier {
	case TierFree:
		return Quotas{MaxUsers: 3, MaxStorageBytes: 1 << 30, MaxWorkflowRuns: 50, MaxAIRequestsHour: 100, MaxAITokensHour: 10_000}
	case TierStarter:
		return Quotas{MaxUsers: 10, MaxStorageBytes: 10 << 30, MaxWorkflowRuns: 500, MaxAIRequestsHour: 500, MaxAITokensHour: 100_000}
	case TierProfessional:
		return Quotas{MaxUsers: 100, MaxStorageBytes: 100 << 30, MaxWorkflowRuns: 5000, MaxAIRequestsHour: 2000, MaxAITokensHour: 500_000}
	case TierEnterprise, TierCustom:
		return Quotas{MaxUsers: 0, MaxStorageBytes: 0, MaxWorkflowRuns: 0, MaxAIRequestsHour: 0, MaxAITokensHour: 0}
	default:
		return Quotas{MaxUsers: 3, MaxStorageBytes: 1 << 30, MaxWorkflowRuns: 50, MaxAIRequestsHour: 100, MaxAITokensHour: 10_000}
	}
}

// Tenant represents a customer organization using the platform.
// Every workflow and activity runs in the context of exactly one tenant.
type Tenant struct {
	// Identity
	ID uuid.UUID `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Slug is the URL-safe, globally unique identifier
	// Lowercase alphanumeric with hyphens, max 255 chars
	Slug string `json:"slug"`

	// Billing and isolation
	Tier           Tier           `json:"tier"`
	IsolationLevel IsolationLevel `json:"isolation_level"`

	// Features is the enabled feature set for this tenant, by feature key
	Features map[string]bool `json:"features,omitempty"`

	Quotas   Quotas   `json:"quotas"`
	Settings Settings `json:"settings"`

	// Current Lifecycle State
	Status        Status `json:"status"`
	StatusMessage string `json:"status_message,omitempty"`

	// WorkflowExecutionID tracks the in-flight provisioning/upgrade/downgrade workflow, if any
	WorkflowExecutionID *string `json:"workflow_execution_id,omitempty"`

	// DesiredConfig / ObservedConfig track in-flight tier or quota changes
	// (e.g. during StatusUpgrading / StatusDowngrading)
	DesiredConfig  map[string]interface{} `json:"desired_config,omitempty"`
	ObservedConfig map[string]interface{} `json:"observed_config,omitempty"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is incremented on every update for optimistic locking
	Version int `json:"version"`

	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Validate checks if a tenant is structurally valid
func (t *Tenant) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(t.Slug) > 255 {
		return fmt.Errorf("slug must be <= 255 characters")
	}
	if !slugPattern.MatchString(t.Slug) {
		return fmt.Errorf("slug must be lowercase alphanumeric with hyphens")
	}
	if t.Tier == "" {
		return fmt.Errorf("tier is required")
	}
	if !t.Tier.IsValid() {
		return fmt.Errorf("invalid tier: %s", t.Tier)
	}
	if t.IsolationLevel == "" {
		return fmt.Errorf("isolation_level is required")
	}
	if !t.IsolationLevel.IsValid() {
		return fmt.Errorf("invalid isolation_level: %s", t.IsolationLevel)
	}
	if t.Status == "" {
		return fmt.Errorf("status is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	return nil
}

// IsDeleted returns true if the tenant has been deleted
func (t *Tenant) IsDeleted() bool {
	return t.Status == StatusDeleted
}

// HasFeature reports whether a feature key is enabled for this tenant
func (t *Tenant) HasFeature(key string) bool {
	if t.Features == nil {
		return false
	}
	return t.Features[key]
}

// IsDrifted returns true if a pending tier/quota change has not yet converged
func (t *Tenant) IsDrifted() bool {
	if t.Status != StatusActive {
		return false
	}
	return !reflect.DeepEqual(t.DesiredConfig, t.ObservedConfig)
}

// Clone creates a deep copy of the tenant
func (t *Tenant) Clone() *Tenant {
	clone := *t
	if t.WorkflowExecutionID != nil {
		id := *t.WorkflowExecutionID
		clone.WorkflowExecutionID = &id
	}
	if t.Features != nil {
		clone.Features = make(map[string]bool, len(t.Features))
		for k, v := range t.Features {
			clone.Features[k] = v
		}
	}
	if t.Labels != nil {
		clone.Labels = make(map[string]string, len(t.Labels))
		for k, v := range t.Labels {
			clone.Labels[k] = v
		}
	}
	if t.Annotations != nil {
		clone.Annotations = make(map[string]string, len(t.Annotations))
		for k, v := range t.Annotations {
			clone.Annotations[k] = v
		}
	}
	if t.Settings.SecurityPolicy.AllowedIPRanges != nil {
		clone.Settings.SecurityPolicy.AllowedIPRanges = append([]string(nil), t.Settings.SecurityPolicy.AllowedIPRanges...)
	}
	return &clone
}

// StateTransition represents a single state change in a tenant's lifecycle.
// Immutable audit log entry.
type StateTransition struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`

	FromStatus *Status `json:"from_status,omitempty"`
	ToStatus   Status  `json:"to_status"`

	Reason      string `json:"reason"`
	TriggeredBy string `json:"triggered_by,omitempty"`

	DesiredStateSnapshot  map[string]interface{} `json:"desired_state_snapshot,omitempty"`
	ObservedStateSnapshot map[string]interface{} `json:"observed_state_snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewStateTransition creates a new state transition record
func NewStateTransition(t *Tenant, toStatus Status, reason, triggeredBy string) *StateTransition {
	transition := &StateTransition{
		ID:          uuid.New(),
		TenantID:    t.ID,
		ToStatus:    toStatus,
		Reason:      reason,
		TriggeredBy: triggeredBy,
		CreatedAt:   time.Now(),
	}

	if t.Status != "" {
		fromStatus := t.Status
		transition.FromStatus = &fromStatus
	}

	if t.DesiredConfig != nil {
		transition.DesiredStateSnapshot = t.DesiredConfig
	}
	if t.ObservedConfig != nil {
		transition.ObservedStateSnapshot = t.ObservedConfig
	}

	return transition
}

// Validate checks if a state transition is valid
func (st *StateTransition) Validate() error {
	if st.TenantID == uuid.Nil {
		return fmt.Errorf("tenant_id is required")
	}
	if st.ToStatus == "" {
		return fmt.Errorf("to_status is required")
	}
	if !st.ToStatus.IsValid() {
		return fmt.Errorf("invalid to_status: %s", st.ToStatus)
	}
	if st.Reason == "" {
		return fmt.Errorf("reason is required")
	}

	if st.FromStatus != nil {
		if !st.FromStatus.CanTransition(st.ToStatus) {
			return fmt.Errorf("invalid transition from %s to %s", *st.FromStatus, st.ToStatus)
		}
	}

	return nil
}
