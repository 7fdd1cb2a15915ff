package compute

import "context"

// SandboxSpec describes an ephemeral, single-use compute sandbox requested
// by the module-install workflow to run a module's install script in
// isolation, as opposed to TenantComputeSpec's long-lived tenant service.
type SandboxSpec struct {
	ModuleID      string            `json:"module_id"`
	Image         string            `json:"image"`
	Command       []string          `json:"command,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
	MemoryMB      int               `json:"memory_mb"`
	CPUCores      float64           `json:"cpu_cores"`
	DiskMB        int               `json:"disk_mb,omitempty"`
	NetworkPolicy string            `json:"network_policy,omitempty"`
	TTLSeconds    int               `json:"ttl_seconds,omitempty"`
}

// SandboxResult identifies the allocated sandbox so it can later be torn
// down with DeallocateSandbox.
type SandboxResult struct {
	SandboxID string `json:"sandbox_id"`
	State     string `json:"state"`
}

// SandboxAllocator is implemented by compute providers that can run a
// short-lived, isolated task in addition to their normal long-lived
// Provider workload. Not every Provider implements it; callers should
// type-assert for it.
type SandboxAllocator interface {
	AllocateSandbox(ctx context.Context, spec SandboxSpec) (*SandboxResult, error)
	DeallocateSandbox(ctx context.Context, sandboxID string) error
}
