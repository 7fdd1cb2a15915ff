package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// EnterpriseProvider represents tenants on an invoice-billing contract:
// charges are recorded against the account's outstanding balance rather
// than collected immediately, and refunds are handled out of band.
type EnterpriseProvider struct{}

// NewEnterpriseProvider constructs the invoice-billing provider.
func NewEnterpriseProvider() *EnterpriseProvider { return &EnterpriseProvider{} }

func (p *EnterpriseProvider) Name() string { return "enterprise" }

func (p *EnterpriseProvider) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	if req.AmountCents < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return &ChargeResult{ChargeID: uuid.NewString(), Status: "pending"}, nil
}

func (p *EnterpriseProvider) Refund(ctx context.Context, chargeID string) error {
	return nil
}
