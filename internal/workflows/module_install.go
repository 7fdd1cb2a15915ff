package workflows

import "encoding/json"

// NewModuleInstallDefinition builds the module install workflow: verify the
// package, scan it, allocate an isolated sandbox sized to the module's
// declared resource limits, extract the package into it, and tear the
// sandbox down once installed.
func NewModuleInstallDefinition() *Definition {
	return &Definition{
		Name: "module_install",
		Steps: []Step{
			{
				Name:     "verify_package",
				Activity: "extract_file_metadata",
				Input:    fileKeyInput,
			},
			{
				Name:     "security_scan",
				Activity: "virus_scan_file",
				Input:    fileKeyInput,
			},
			{
				Name:     "allocate_sandbox",
				Activity: "allocate_sandbox",
				Input:    allocateSandboxInput,
			},
			{
				Name:     "install_in_sandbox",
				Activity: "invoke_workflow_provider",
				Input:    passthroughInput,
			},
			{
				Name:     "record_install",
				Activity: "audit",
				Input:    moduleInstallAuditInput,
			},
			{
				Name:     "deallocate_sandbox",
				Activity: "deallocate_sandbox",
				Input:    deallocateSandboxInput,
			},
		},
	}
}

func allocateSandboxInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		TenantID       string `json:"tenant_id"`
		ModuleID       string `json:"module_id"`
		Image          string `json:"image"`
		ComputeProvider string `json:"compute_provider"`
		Resources      struct {
			MemoryMB      int     `json:"memory_mb"`
			CPUCores      float64 `json:"cpu_cores"`
			DiskMB        int     `json:"disk_mb"`
			NetworkPolicy string  `json:"network_policy"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	if in.ComputeProvider == "" {
		in.ComputeProvider = "docker"
	}
	return json.Marshal(map[string]interface{}{
		"provider": in.ComputeProvider,
		"spec": map[string]interface{}{
			"module_id":      in.ModuleID,
			"image":          in.Image,
			"memory_mb":      in.Resources.MemoryMB,
			"cpu_cores":      in.Resources.CPUCores,
			"disk_mb":        in.Resources.DiskMB,
			"network_policy": in.Resources.NetworkPolicy,
		},
	})
}

func deallocateSandboxInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var alloc struct {
		SandboxID string `json:"sandbox_id"`
	}
	if err := json.Unmarshal(state["allocate_sandbox"], &alloc); err != nil {
		return nil, err
	}
	var in struct {
		ComputeProvider string `json:"compute_provider"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	if in.ComputeProvider == "" {
		in.ComputeProvider = "docker"
	}
	return json.Marshal(map[string]string{
		"provider":   in.ComputeProvider,
		"sandbox_id": alloc.SandboxID,
	})
}

func moduleInstallAuditInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		TenantID string `json:"tenant_id"`
		ModuleID string `json:"module_id"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"tenant_id": in.TenantID,
		"action":    "module.installed",
		"resource":  in.ModuleID,
		"success":   true,
	})
}
