package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adxcore/orchestrator/internal/compute"
)

// DeallocateSandboxInput tears down a sandbox previously created by
// allocate_sandbox, once the module install script has run to completion.
type DeallocateSandboxInput struct {
	Provider  string `json:"provider"`
	SandboxID string `json:"sandbox_id"`
}

// DeallocateSandbox stops and removes a module install sandbox.
type DeallocateSandbox struct {
	registry *compute.Registry
}

// NewDeallocateSandbox constructs the deallocate_sandbox activity.
func NewDeallocateSandbox(registry *compute.Registry) *DeallocateSandbox {
	return &DeallocateSandbox{registry: registry}
}

func (a *DeallocateSandbox) Name() string { return "deallocate_sandbox" }

func (a *DeallocateSandbox) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *DeallocateSandbox) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in DeallocateSandboxInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode deallocate_sandbox input: %w", err)
	}

	provider, err := a.registry.Get(in.Provider)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox provider: %w", err)
	}
	allocator, ok := provider.(compute.SandboxAllocator)
	if !ok {
		return nil, fmt.Errorf("compute provider %s does not support sandbox allocation", in.Provider)
	}

	if err := allocator.DeallocateSandbox(ctx, in.SandboxID); err != nil {
		return nil, fmt.Errorf("deallocate sandbox: %w", err)
	}
	return json.Marshal(map[string]bool{"deallocated": true})
}
