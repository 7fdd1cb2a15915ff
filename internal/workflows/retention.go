package workflows

import "encoding/json"

// NewDataRetentionDefinition builds the data retention workflow: apply one
// (tenant, resource_type) policy's retention method to every resource that
// has aged past its threshold, then audit the sweep's outcome.
func NewDataRetentionDefinition() *Definition {
	return &Definition{
		Name: "data_retention",
		Steps: []Step{
			{
				Name:     "apply_policy",
				Activity: "apply_retention_policy",
				Input:    passthroughInput,
			},
			{
				Name:     "record_sweep",
				Activity: "audit",
				Input:    retentionAuditInput,
			},
		},
	}
}

func retentionAuditInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Policy struct {
			TenantID     string `json:"tenant_id"`
			ResourceType string `json:"resource_type"`
			Method       string `json:"method"`
		} `json:"policy"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"tenant_id": in.Policy.TenantID,
		"action":    "retention." + in.Policy.Method,
		"resource":  in.Policy.ResourceType,
		"success":   true,
	})
}
