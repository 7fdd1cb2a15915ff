// Package gateway classifies each workflow dispatch as synchronous or
// asynchronous and exposes the resulting operation for status polling and
// streaming, fronting the workflows.Engine the same way the teacher's
// Restate tenant-provisioning service fronted its single operation-dispatch
// handler with an HTTP surface.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adxcore/orchestrator/internal/workflow"
	"github.com/adxcore/orchestrator/internal/workflows"
)

// syncAllowlist holds the workflow types short enough to attempt a
// synchronous response. Anything not listed here is dispatched
// asynchronously unconditionally.
var syncAllowlist = map[string]bool{
	"validate_user":     true,
	"check_permissions":  true,
	"get_user_profile":  true,
	"tenant_switch":      true,
	"license_quota_enforcement": true,
}

// syncDeadlines overrides the default 2s synchronous deadline per workflow
// type.
var syncDeadlines = map[string]time.Duration{
	"validate_user": 500 * time.Millisecond,
}

const defaultSyncDeadline = 2 * time.Second

// estimatedDurations is the per-type table used to populate an
// asynchronous response's estimated_duration_seconds.
var estimatedDurations = map[string]int{
	"tenant_provision_migrate": 300,
	"file_upload_pipeline":     120,
	"bulk_operation":           600,
	"user_onboarding":          30,
	"module_install":           60,
}

const defaultEstimatedDurationSeconds = 60

// SyncResponse is returned when a workflow completes within its
// synchronous deadline.
type SyncResponse struct {
	Kind            string          `json:"kind"`
	Data            json.RawMessage `json:"data"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
	WorkflowID      string          `json:"workflow_id"`
}

// AsyncResponse is returned for asynchronous dispatch, or when a
// synchronous attempt exceeds its deadline and is transparently converted.
type AsyncResponse struct {
	Kind                     string `json:"kind"`
	OperationID              string `json:"operation_id"`
	StatusURL                string `json:"status_url"`
	StreamURL                string `json:"stream_url"`
	EstimatedDurationSeconds int    `json:"estimated_duration_seconds"`
}

// StatusResponse answers a status poll for an in-flight or completed
// operation.
type StatusResponse struct {
	OperationID         string          `json:"operation_id"`
	Status              string          `json:"status"`
	Progress            json.RawMessage `json:"progress,omitempty"`
	Result              json.RawMessage `json:"result,omitempty"`
	Error               string          `json:"error,omitempty"`
	StartedAt           time.Time       `json:"started_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	EstimatedCompletion *time.Time      `json:"estimated_completion,omitempty"`
}

// Gateway dispatches workflow requests, classifying each as synchronous or
// asynchronous and tracking asynchronous operations for later polling.
type Gateway struct {
	engine  *workflows.Engine
	library *workflows.Library
	store   *executionStore
	logger  *zap.Logger
}

// New constructs a Gateway over the given workflow engine and library.
func New(engine *workflows.Engine, library *workflows.Library, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		engine:  engine,
		library: library,
		store:   newExecutionStore(),
		logger:  logger.With(zap.String("component", "gateway")),
	}
}

// Dispatch runs workflowType against input, returning either a
// *SyncResponse or an *AsyncResponse depending on the sync allowlist and
// whether the workflow finishes within its deadline.
func (g *Gateway) Dispatch(ctx context.Context, workflowType string, input json.RawMessage) (interface{}, error) {
	def, err := g.library.Get(workflowType)
	if err != nil {
		return nil, err
	}

	operationID := uuid.NewString()
	now := time.Now().UTC()
	g.store.start(operationID, workflowType, now)

	done := make(chan *workflow.ExecutionStatus, 1)
	go func() {
		_, status, runErr := g.engine.Run(context.WithoutCancel(ctx), def, input)
		if runErr != nil && status == nil {
			status = &workflow.ExecutionStatus{WorkflowID: workflowType, State: workflow.StateFailed, Error: &workflow.ExecutionError{Message: runErr.Error()}}
		}
		g.store.finish(operationID, status)
		done <- status
	}()

	if !syncAllowlist[workflowType] {
		return g.asyncResponse(operationID, workflowType), nil
	}

	deadline := defaultSyncDeadline
	if d, ok := syncDeadlines[workflowType]; ok {
		deadline = d
	}

	select {
	case status := <-done:
		if status != nil && status.State == workflow.StateFailed {
			msg := "workflow failed"
			if status.Error != nil {
				msg = status.Error.Message
			}
			return nil, fmt.Errorf("%s: %s", workflowType, msg)
		}
		var data json.RawMessage
		if status != nil {
			data = status.Output
		}
		return &SyncResponse{
			Kind:            "synchronous",
			Data:            data,
			ExecutionTimeMs: time.Since(now).Milliseconds(),
			WorkflowID:      operationID,
		}, nil
	case <-time.After(deadline):
		g.logger.Info("synchronous dispatch exceeded deadline, converting to asynchronous",
			zap.String("workflow_type", workflowType), zap.String("operation_id", operationID))
		return g.asyncResponse(operationID, workflowType), nil
	}
}

func (g *Gateway) asyncResponse(operationID, workflowType string) *AsyncResponse {
	duration := defaultEstimatedDurationSeconds
	if d, ok := estimatedDurations[workflowType]; ok {
		duration = d
	}
	return &AsyncResponse{
		Kind:                     "asynchronous",
		OperationID:              operationID,
		StatusURL:                fmt.Sprintf("/workflows/%s/status", operationID),
		StreamURL:                fmt.Sprintf("/workflows/%s/stream", operationID),
		EstimatedDurationSeconds: duration,
	}
}

// Status returns the cached status of operationID, or an error if it's
// unknown.
func (g *Gateway) Status(operationID string) (*StatusResponse, error) {
	return g.store.status(operationID)
}

// Subscribe registers a channel that receives a status update every time
// operationID's status changes, used by the streaming endpoint. The
// returned cancel function must be called to unregister.
func (g *Gateway) Subscribe(operationID string) (<-chan *StatusResponse, func(), error) {
	return g.store.subscribe(operationID)
}
