package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adxcore/orchestrator/internal/payment"
)

// ChargeInput is the payload for the charge activity, used by license
// provisioning/renewal workflows.
type ChargeInput struct {
	Provider       string `json:"provider"`
	TenantID       string `json:"tenant_id"`
	IdempotencyKey string `json:"idempotency_key"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	Description    string `json:"description,omitempty"`
}

// Charge invokes a billing provider to collect payment.
type Charge struct {
	registry *payment.Registry
}

// NewCharge constructs the charge activity.
func NewCharge(registry *payment.Registry) *Charge {
	return &Charge{registry: registry}
}

func (a *Charge) Name() string { return "charge" }

func (a *Charge) DefaultRetryPolicy() RetryPolicy {
	// Charges are not safe to blindly retry; a single attempt relies on the
	// caller's idempotency key for provider-side dedup.
	return RetryPolicy{MaxAttempts: 1}
}

func (a *Charge) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in ChargeInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode charge input: %w", err)
	}
	if in.IdempotencyKey == "" {
		return nil, fmt.Errorf("idempotency_key is required")
	}

	provider, err := a.registry.Get(in.Provider)
	if err != nil {
		return nil, err
	}

	result, err := provider.Charge(ctx, &payment.ChargeRequest{
		TenantID:       in.TenantID,
		IdempotencyKey: in.IdempotencyKey,
		AmountCents:    in.AmountCents,
		Currency:       in.Currency,
		Description:    in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("charge tenant %s: %w", in.TenantID, err)
	}

	return json.Marshal(result)
}
