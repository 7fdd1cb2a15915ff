package workflows

import "encoding/json"

// NewTenantSwitchDefinition builds the tenant switch workflow: a user
// changes their active tenant context, which is audited but otherwise
// doesn't touch compute.
func NewTenantSwitchDefinition() *Definition {
	return &Definition{
		Name: "tenant_switch",
		Steps: []Step{
			{
				Name:     "record_switch",
				Activity: "audit",
				Input:    tenantSwitchAuditInput,
			},
		},
	}
}

func tenantSwitchAuditInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		TenantID string `json:"tenant_id"`
		UserID   string `json:"user_id"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"tenant_id": in.TenantID,
		"actor_id":  in.UserID,
		"action":    "tenant.switched",
		"success":   true,
	})
}

// NewTenantProvisionMigrateDefinition builds the tenant provision/migrate
// workflow: delegate compute provisioning to the durable-execution provider,
// then audit the result.
func NewTenantProvisionMigrateDefinition() *Definition {
	return &Definition{
		Name: "tenant_provision_migrate",
		Steps: []Step{
			{
				Name:     "provision",
				Activity: "invoke_workflow_provider",
				Input:    passthroughInput,
			},
			{
				Name:     "record_provision",
				Activity: "audit",
				Input:    tenantProvisionAuditInput,
			},
		},
	}
}

func tenantProvisionAuditInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Request struct {
			TenantID  string `json:"tenant_id"`
			Operation string `json:"operation"`
		} `json:"request"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"tenant_id": in.Request.TenantID,
		"action":    "tenant." + in.Request.Operation,
		"success":   true,
	})
}
