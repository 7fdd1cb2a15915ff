package workflows

import "encoding/json"

// NewLicenseProvisionDefinition builds the license provisioning workflow:
// create the license record, then audit it.
func NewLicenseProvisionDefinition() *Definition {
	return &Definition{
		Name: "license_provision",
		Steps: []Step{
			{
				Name:     "provision",
				Activity: "provision_license",
				Input:    passthroughInput,
			},
			{
				Name:     "record_provision",
				Activity: "audit",
				Input:    licenseAuditInput("license.provisioned"),
			},
		},
	}
}

// NewLicenseQuotaEnforcementDefinition builds the quota enforcement
// workflow: atomically check (current_usage + requested) against limit,
// denying with QuotaExceeded when it would be exceeded.
func NewLicenseQuotaEnforcementDefinition() *Definition {
	return &Definition{
		Name: "license_quota_enforcement",
		Steps: []Step{
			{
				Name:     "check_quota",
				Activity: "check_license_quota",
				Input:    passthroughInput,
			},
		},
	}
}

// NewLicenseRenewalDefinition builds the license renewal workflow: build
// the invoice (base + usage + tax), settle payment, extend expiry, audit.
func NewLicenseRenewalDefinition() *Definition {
	return &Definition{
		Name: "license_renewal",
		Steps: []Step{
			{
				Name:     "build_invoice",
				Activity: "build_renewal_invoice",
				Input:    passthroughInput,
			},
			{
				Name:     "settle_payment",
				Activity: "charge",
				Input:    renewalChargeInput,
			},
			{
				Name:     "record_renewal",
				Activity: "audit",
				Input:    licenseAuditInput("license.renewed"),
			},
		},
	}
}

func licenseAuditInput(action string) StepFunc {
	return func(state map[string]json.RawMessage) (json.RawMessage, error) {
		var in struct {
			License struct {
				TenantID string `json:"tenant_id"`
			} `json:"license"`
			TenantID string `json:"tenant_id"`
		}
		if err := json.Unmarshal(state["input"], &in); err != nil {
			return nil, err
		}
		tenantID := in.TenantID
		if tenantID == "" {
			tenantID = in.License.TenantID
		}
		return json.Marshal(map[string]interface{}{
			"tenant_id": tenantID,
			"action":    action,
			"success":   true,
		})
	}
}

func renewalChargeInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var invoice struct {
		TotalCents int64 `json:"total_cents"`
	}
	if err := json.Unmarshal(state["build_invoice"], &invoice); err != nil {
		return nil, err
	}
	var in struct {
		License struct {
			TenantID string `json:"tenant_id"`
			Currency string `json:"currency"`
		} `json:"license"`
		IdempotencyKey string `json:"idempotency_key"`
		Provider       string `json:"provider"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"provider":        in.Provider,
		"tenant_id":       in.License.TenantID,
		"idempotency_key": in.IdempotencyKey,
		"amount_cents":    invoice.TotalCents,
		"currency":        in.License.Currency,
		"description":     "license renewal",
	})
}
