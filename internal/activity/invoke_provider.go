package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adxcore/orchestrator/internal/workflow"
)

// InvokeProviderInput is the payload for the invoke_workflow_provider
// activity, which hands off to the durable-execution provider abstraction
// (restate/step-functions/mock) for compute-affecting operations the
// activity library itself doesn't implement directly.
type InvokeProviderInput struct {
	WorkflowID string                  `json:"workflow_id"`
	Request    workflow.ProvisionRequest `json:"request"`
}

// InvokeWorkflowProvider delegates to a workflow.Provider, used by the
// tenant switch and tenant provision/migrate workflows.
type InvokeWorkflowProvider struct {
	provider workflow.Provider
}

// NewInvokeWorkflowProvider constructs the invoke_workflow_provider activity.
func NewInvokeWorkflowProvider(provider workflow.Provider) *InvokeWorkflowProvider {
	return &InvokeWorkflowProvider{provider: provider}
}

func (a *InvokeWorkflowProvider) Name() string { return "invoke_workflow_provider" }

func (a *InvokeWorkflowProvider) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *InvokeWorkflowProvider) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in InvokeProviderInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode invoke_workflow_provider input: %w", err)
	}
	if in.WorkflowID == "" {
		return nil, fmt.Errorf("workflow_id is required")
	}

	result, err := a.provider.Invoke(ctx, in.WorkflowID, &in.Request)
	if err != nil {
		return nil, fmt.Errorf("invoke workflow provider: %w", err)
	}
	return json.Marshal(result)
}
