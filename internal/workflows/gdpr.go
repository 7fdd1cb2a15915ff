package workflows

import "encoding/json"

// NewGDPRExportDefinition builds the GDPR export workflow: verify the
// requester's token, then package the tenant's data into a downloadable
// archive.
func NewGDPRExportDefinition() *Definition {
	return &Definition{
		Name: "gdpr_export",
		Steps: []Step{
			{
				Name:     "verify_token",
				Activity: "verify_gdpr_token",
				Input:    passthroughInput,
			},
			{
				Name:     "export_archive",
				Activity: "export_tenant_archive",
				Input:    passthroughInput,
			},
			{
				Name:     "record_export",
				Activity: "audit",
				Input:    gdprAuditInput("gdpr.exported"),
			},
		},
	}
}

// NewGDPRDeletionDefinition builds the GDPR deletion workflow: verify the
// token, take an optional backup snapshot, delete in reverse dependency
// order, then notify the requester.
func NewGDPRDeletionDefinition() *Definition {
	return &Definition{
		Name: "gdpr_deletion",
		Steps: []Step{
			{
				Name:     "verify_token",
				Activity: "verify_gdpr_token",
				Input:    passthroughInput,
			},
			{
				Name:      "backup_snapshot",
				Activity:  "export_tenant_archive",
				Input:     passthroughInput,
				Condition: wantsBackupSnapshot,
			},
			{
				Name:     "delete_data",
				Activity: "delete_tenant_data",
				Input:    passthroughInput,
			},
			{
				Name:     "record_deletion",
				Activity: "audit",
				Input:    gdprAuditInput("gdpr.deleted"),
			},
			{
				Name:     "notify_requester",
				Activity: "notify",
				Input:    gdprDeletionNotifyInput,
			},
		},
	}
}

func wantsBackupSnapshot(state map[string]json.RawMessage) bool {
	var in struct {
		BackupBeforeDelete bool `json:"backup_before_delete"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return false
	}
	return in.BackupBeforeDelete
}

func gdprAuditInput(action string) StepFunc {
	return func(state map[string]json.RawMessage) (json.RawMessage, error) {
		var in struct {
			TenantID string `json:"tenant_id"`
		}
		if err := json.Unmarshal(state["input"], &in); err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{
			"tenant_id": in.TenantID,
			"action":    action,
			"success":   true,
		})
	}
}

func gdprDeletionNotifyInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Email string `json:"requester_email"`
		Name  string `json:"requester_name"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"to":       in.Email,
		"template": "gdpr_deletion_confirmed",
		"data":     map[string]string{"Name": in.Name},
	})
}
