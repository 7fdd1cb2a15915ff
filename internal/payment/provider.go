// Package payment abstracts the billing providers the license workflows
// charge against. No payment SDK appears anywhere in the retrieval pack, so
// the Stripe provider is a thin net/http client against its documented REST
// API rather than a vendored SDK; the enterprise provider makes no network
// calls. See DESIGN.md.
package payment

import (
	"context"
	"fmt"
	"sync"
)

// ChargeRequest describes a single charge attempt.
type ChargeRequest struct {
	TenantID       string `json:"tenant_id"`
	IdempotencyKey string `json:"idempotency_key"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	Description    string `json:"description,omitempty"`
}

// ChargeResult is returned on a successful or declined charge.
type ChargeResult struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"` // succeeded, declined, pending
}

// Provider is implemented by each billing backend.
type Provider interface {
	Name() string
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, chargeID string) error
}

// Registry holds configured payment providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty payment provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a payment provider.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("payment provider already registered: %s", name)
	}
	r.providers[name] = p
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("payment provider not found: %s", name)
	}
	return p, nil
}
