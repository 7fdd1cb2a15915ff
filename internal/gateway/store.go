package gateway

import (
	"fmt"
	"sync"
	"time"

	"github.com/adxcore/orchestrator/internal/workflow"
)

// statusTTL bounds how long a completed operation's status is retained,
// absorbing repeated polling load the way the status cache described in
// the dispatch gateway's spec does.
const statusTTL = 10 * time.Minute

type operationRecord struct {
	workflowType string
	status       *workflow.ExecutionStatus
	startedAt    time.Time
	updatedAt    time.Time
	expiresAt    time.Time
	subscribers  []chan *StatusResponse
}

// executionStore tracks in-flight and recently completed operations,
// keyed by operation ID.
type executionStore struct {
	mu      sync.Mutex
	records map[string]*operationRecord
}

func newExecutionStore() *executionStore {
	return &executionStore{records: make(map[string]*operationRecord)}
}

func (s *executionStore) start(operationID, workflowType string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[operationID] = &operationRecord{
		workflowType: workflowType,
		startedAt:    at,
		updatedAt:    at,
		status:       &workflow.ExecutionStatus{WorkflowID: operationID, State: workflow.StateRunning, StartTime: at},
	}
}

func (s *executionStore) finish(operationID string, status *workflow.ExecutionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[operationID]
	if !ok {
		return
	}
	rec.status = status
	rec.updatedAt = time.Now().UTC()
	rec.expiresAt = rec.updatedAt.Add(statusTTL)

	resp := toStatusResponse(operationID, rec)
	for _, sub := range rec.subscribers {
		select {
		case sub <- resp:
		default:
		}
		close(sub)
	}
	rec.subscribers = nil
}

func (s *executionStore) status(operationID string) (*StatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[operationID]
	if !ok || (!rec.expiresAt.IsZero() && time.Now().After(rec.expiresAt)) {
		return nil, fmt.Errorf("operation not found: %s", operationID)
	}
	return toStatusResponse(operationID, rec), nil
}

func (s *executionStore) subscribe(operationID string) (<-chan *StatusResponse, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[operationID]
	if !ok {
		return nil, nil, fmt.Errorf("operation not found: %s", operationID)
	}

	ch := make(chan *StatusResponse, 1)
	if rec.status != nil && rec.status.State != workflow.StateRunning && rec.status.State != workflow.StatePending {
		ch <- toStatusResponse(operationID, rec)
		close(ch)
		return ch, func() {}, nil
	}

	rec.subscribers = append(rec.subscribers, ch)
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range rec.subscribers {
			if sub == ch {
				rec.subscribers = append(rec.subscribers[:i], rec.subscribers[i+1:]...)
				break
			}
		}
	}
	return ch, cancel, nil
}

func toStatusResponse(operationID string, rec *operationRecord) *StatusResponse {
	resp := &StatusResponse{
		OperationID: operationID,
		StartedAt:   rec.startedAt,
		UpdatedAt:   rec.updatedAt,
	}
	if rec.status == nil {
		resp.Status = string(workflow.StateRunning)
		return resp
	}
	resp.Status = string(rec.status.State)
	resp.Result = rec.status.Output
	if rec.status.Error != nil {
		resp.Error = rec.status.Error.Message
	}
	return resp
}
