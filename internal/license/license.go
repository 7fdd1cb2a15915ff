// Package license implements license provisioning, quota enforcement, and
// renewal billing for a tenant's subscription.
package license

import (
	"fmt"
	"time"

	"github.com/adxcore/orchestrator/internal/tenant"
)

// DefaultTaxRate is the flat tax rate applied to renewal invoices absent a
// jurisdiction-specific override.
const DefaultTaxRate = 0.08

// License is a tenant's subscription: tier, quotas, pricing, and expiry.
type License struct {
	TenantID  string         `json:"tenant_id"`
	Tier      tenant.Tier    `json:"tier"`
	BasePrice float64        `json:"base_price"`
	Currency  string         `json:"currency"`
	Quotas    tenant.Quotas  `json:"quotas"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Provision creates a new License for tier with the tier's default quotas.
func Provision(tenantID string, tier tenant.Tier, basePrice float64, currency string, term time.Duration) *License {
	return &License{
		TenantID:  tenantID,
		Tier:      tier,
		BasePrice: basePrice,
		Currency:  currency,
		Quotas:    tenant.DefaultQuotasForTier(tier),
		ExpiresAt: time.Now().UTC().Add(term),
	}
}

// InvoiceLineItem is one charge on a renewal invoice.
type InvoiceLineItem struct {
	Description string  `json:"description"`
	AmountCents int64   `json:"amount_cents"`
}

// Invoice is the renewal bill: base subscription plus metered usage, with
// tax applied to the subtotal.
type Invoice struct {
	LineItems   []InvoiceLineItem `json:"line_items"`
	SubtotalCents int64           `json:"subtotal_cents"`
	TaxCents      int64           `json:"tax_cents"`
	TotalCents    int64           `json:"total_cents"`
}

// BuildRenewalInvoice composes the renewal invoice from the license's base
// price plus a metered usage charge, applying taxRate (DefaultTaxRate when
// zero) to the subtotal.
func BuildRenewalInvoice(lic *License, usageCents int64, taxRate float64) *Invoice {
	if taxRate == 0 {
		taxRate = DefaultTaxRate
	}
	baseCents := int64(lic.BasePrice * 100)
	items := []InvoiceLineItem{
		{Description: fmt.Sprintf("%s subscription", lic.Tier), AmountCents: baseCents},
	}
	if usageCents > 0 {
		items = append(items, InvoiceLineItem{Description: "metered usage", AmountCents: usageCents})
	}

	subtotal := baseCents + usageCents
	tax := int64(float64(subtotal) * taxRate)
	return &Invoice{
		LineItems:     items,
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}

// Extend pushes ExpiresAt forward by term from now, used after a renewal
// payment settles.
func (l *License) Extend(term time.Duration) {
	l.ExpiresAt = time.Now().UTC().Add(term)
}

// CheckQuota returns an error if (currentUsage + requested) exceeds limit;
// limit <= 0 means unlimited.
func CheckQuota(currentUsage, requested, limit int) error {
	if limit <= 0 {
		return nil
	}
	if currentUsage+requested > limit {
		return fmt.Errorf("%w: %d + %d > %d", ErrQuotaExceeded, currentUsage, requested, limit)
	}
	return nil
}
