package controller

import (
	"github.com/adxcore/orchestrator/internal/tenant"
	"github.com/adxcore/orchestrator/internal/workflow"
)

// isDegradedWorkflow checks if a workflow is in a degraded state that warrants restart.
// Degraded states are:
// - SubStateBackingOff: workflow is backing off due to failures
//
// These states indicate provisioning issues that may be resolved by restarting
// the workflow with updated configuration.
//
// Workflows in other states are NOT considered degraded:
// - SubStateRunning: actively provisioning, should not interrupt
// - SubStateSucceeded: completed successfully
// - SubStateFailed: terminal failure, handled separately
// - SubStateWaiting: waiting for external event, not an error state
func isDegradedWorkflow(execStatus *workflow.ExecutionStatus) bool {
	if execStatus == nil {
		return false
	}

	// Only consider running workflows (not terminal states)
	if execStatus.State == workflow.StateSucceeded ||
		execStatus.State == workflow.StateFailed ||
		execStatus.State == workflow.StateTimedOut ||
		execStatus.State == workflow.StateCancelled {
		return false
	}

	// Extract sub-state using workflow package's logic
	subState, _, _ := workflow.ExtractWorkflowDetails(execStatus)

	// Degraded state that warrants restart on config change
	return subState == workflow.SubStateBackingOff
}

// hasConfigChanged checks if tenant's current desired config differs from the
// config hash recorded in its ObservedConfig at the time the workflow last ran.
// Returns false when no observed hash has been recorded yet, or when hashing
// fails (assume no change to avoid false restarts).
func hasConfigChanged(t *tenant.Tenant) bool {
	observedHash, _ := t.ObservedConfig["config_hash"].(string)
	if observedHash == "" {
		return false
	}

	currentHash, err := tenant.ComputeConfigHash(t.DesiredConfig)
	if err != nil {
		return false
	}

	return currentHash != observedHash
}
