package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adxcore/orchestrator/internal/license"
	"github.com/adxcore/orchestrator/internal/tenant"
)

// ProvisionLicenseInput requests a new license for a tenant's subscription.
type ProvisionLicenseInput struct {
	TenantID  string      `json:"tenant_id"`
	Tier      tenant.Tier `json:"tier"`
	BasePrice float64     `json:"base_price"`
	Currency  string      `json:"currency"`
	TermDays  int         `json:"term_days"`
}

// ProvisionLicense creates a license record with tier defaults.
type ProvisionLicense struct{}

func NewProvisionLicense() *ProvisionLicense { return &ProvisionLicense{} }

func (a *ProvisionLicense) Name() string { return "provision_license" }

func (a *ProvisionLicense) DefaultRetryPolicy() RetryPolicy { return DefaultRetryPolicy() }

func (a *ProvisionLicense) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in ProvisionLicenseInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode provision_license input: %w", err)
	}
	if in.TermDays == 0 {
		in.TermDays = 365
	}
	lic := license.Provision(in.TenantID, in.Tier, in.BasePrice, in.Currency, time.Duration(in.TermDays)*24*time.Hour)
	return json.Marshal(lic)
}

// CheckLicenseQuotaInput checks whether currentUsage+Requested fits under
// limit before allowing an operation that consumes a license quota.
type CheckLicenseQuotaInput struct {
	CurrentUsage int `json:"current_usage"`
	Requested    int `json:"requested"`
	Limit        int `json:"limit"`
}

// CheckLicenseQuota enforces a single quota dimension atomically from the
// caller's perspective: the caller is expected to have already loaded
// CurrentUsage under a row lock.
type CheckLicenseQuota struct{}

func NewCheckLicenseQuota() *CheckLicenseQuota { return &CheckLicenseQuota{} }

func (a *CheckLicenseQuota) Name() string { return "check_license_quota" }

func (a *CheckLicenseQuota) DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (a *CheckLicenseQuota) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in CheckLicenseQuotaInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode check_license_quota input: %w", err)
	}
	if err := license.CheckQuota(in.CurrentUsage, in.Requested, in.Limit); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]bool{"allowed": true})
}

// BuildRenewalInvoiceInput requests an invoice for a license renewal.
type BuildRenewalInvoiceInput struct {
	License    license.License `json:"license"`
	UsageCents int64           `json:"usage_cents"`
	TaxRate    float64         `json:"tax_rate,omitempty"`
}

// BuildRenewalInvoice composes a renewal invoice (base + usage + tax).
type BuildRenewalInvoice struct{}

func NewBuildRenewalInvoice() *BuildRenewalInvoice { return &BuildRenewalInvoice{} }

func (a *BuildRenewalInvoice) Name() string { return "build_renewal_invoice" }

func (a *BuildRenewalInvoice) DefaultRetryPolicy() RetryPolicy { return DefaultRetryPolicy() }

func (a *BuildRenewalInvoice) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in BuildRenewalInvoiceInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode build_renewal_invoice input: %w", err)
	}
	invoice := license.BuildRenewalInvoice(&in.License, in.UsageCents, in.TaxRate)
	return json.Marshal(invoice)
}
