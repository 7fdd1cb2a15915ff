package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adxcore/orchestrator/internal/compute"
)

// AllocateSandboxInput requests an ephemeral compute sandbox for a module
// install step, resolved against whichever registered compute provider
// implements compute.SandboxAllocator.
type AllocateSandboxInput struct {
	Provider string              `json:"provider"`
	Spec     compute.SandboxSpec `json:"spec"`
}

// AllocateSandbox runs a module's install script in an isolated, short-lived
// compute sandbox (an ECS RunTask or a throwaway Docker container),
// as opposed to the long-lived compute a tenant's workflow.Provider manages.
type AllocateSandbox struct {
	registry *compute.Registry
}

// NewAllocateSandbox constructs the allocate_sandbox activity.
func NewAllocateSandbox(registry *compute.Registry) *AllocateSandbox {
	return &AllocateSandbox{registry: registry}
}

func (a *AllocateSandbox) Name() string { return "allocate_sandbox" }

func (a *AllocateSandbox) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *AllocateSandbox) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in AllocateSandboxInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode allocate_sandbox input: %w", err)
	}

	provider, err := a.registry.Get(in.Provider)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox provider: %w", err)
	}
	allocator, ok := provider.(compute.SandboxAllocator)
	if !ok {
		return nil, fmt.Errorf("compute provider %s does not support sandbox allocation", in.Provider)
	}

	result, err := allocator.AllocateSandbox(ctx, in.Spec)
	if err != nil {
		return nil, fmt.Errorf("allocate sandbox: %w", err)
	}
	return json.Marshal(result)
}
