package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adxcore/orchestrator/internal/audit"
)

// AuditInput is the payload for the audit activity, which every other
// activity's caller can invoke to record an action without writing to the
// audit logger directly.
type AuditInput struct {
	TenantID   string          `json:"tenant_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource,omitempty"`
	WorkflowID string          `json:"workflow_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Success    bool            `json:"success"`
}

// Audit records an audit log entry.
type Audit struct {
	logger *audit.Logger
}

// NewAudit constructs the audit activity.
func NewAudit(logger *audit.Logger) *Audit {
	return &Audit{logger: logger}
}

func (a *Audit) Name() string { return "audit" }

func (a *Audit) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *Audit) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in AuditInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode audit input: %w", err)
	}
	if in.TenantID == "" || in.Action == "" {
		return nil, fmt.Errorf("tenant_id and action are required")
	}

	err := a.logger.Record(ctx, audit.Entry{
		TenantID:   in.TenantID,
		ActorID:    in.ActorID,
		Action:     in.Action,
		Resource:   in.Resource,
		WorkflowID: in.WorkflowID,
		Details:    in.Details,
		Success:    in.Success,
	})
	if err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	return json.Marshal(map[string]bool{"recorded": true})
}
