package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// BulkOperationInput batches TargetActivity over Entities: BatchSize
// entities per batch, up to Parallelism concurrent invocations within a
// batch, DelayBetweenBatches between batches. Per-entity failures are
// recorded but don't stop the run unless RollbackOnFailure is set.
type BulkOperationInput struct {
	TargetActivity      string            `json:"target_activity"`
	Entities            []json.RawMessage `json:"entities"`
	BatchSize           int               `json:"batch_size,omitempty"`
	Parallelism         int               `json:"parallelism,omitempty"`
	DelayBetweenBatches time.Duration     `json:"delay_between_batches,omitempty"`
	RollbackOnFailure   bool              `json:"rollback_on_failure,omitempty"`
	MaxRetriesPerEntity int               `json:"max_retries_per_entity,omitempty"`
}

// EntityResult is one entity's outcome within a bulk operation.
type EntityResult struct {
	Index      int    `json:"index"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
}

// BulkOperationOutput summarizes a bulk run.
type BulkOperationOutput struct {
	Results        []EntityResult `json:"results"`
	SucceededCount int            `json:"succeeded_count"`
	FailedCount    int            `json:"failed_count"`
	RolledBack     bool           `json:"rolled_back"`
}

// BulkOperation drives TargetActivity over a list of entities in batches,
// the general-purpose host for any bulk_* operation (bulk user invite,
// bulk license update, etc). It dispatches into the same activity.Registry
// it's registered in, since the per-entity unit of work is itself an
// ordinary activity.
type BulkOperation struct {
	registry *Registry
}

// NewBulkOperation constructs the bulk_operation activity.
func NewBulkOperation(registry *Registry) *BulkOperation {
	return &BulkOperation{registry: registry}
}

func (a *BulkOperation) Name() string { return "bulk_operation" }

func (a *BulkOperation) DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (a *BulkOperation) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in BulkOperationInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode bulk_operation input: %w", err)
	}
	if in.BatchSize <= 0 {
		in.BatchSize = 10
	}
	if in.Parallelism <= 0 {
		in.Parallelism = 1
	}
	if in.MaxRetriesPerEntity <= 0 {
		in.MaxRetriesPerEntity = 1
	}

	target, err := a.registry.Get(in.TargetActivity)
	if err != nil {
		return nil, fmt.Errorf("resolve bulk target activity: %w", err)
	}

	out := BulkOperationOutput{Results: make([]EntityResult, len(in.Entities))}

	for batchStart := 0; batchStart < len(in.Entities); batchStart += in.BatchSize {
		batchEnd := batchStart + in.BatchSize
		if batchEnd > len(in.Entities) {
			batchEnd = len(in.Entities)
		}

		if rolledBack := a.runBatch(ctx, target, in, out.Results, batchStart, batchEnd); rolledBack {
			out.RolledBack = true
			break
		}

		if batchEnd < len(in.Entities) && in.DelayBetweenBatches > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(in.DelayBetweenBatches):
			}
		}
	}

	for _, r := range out.Results {
		if r.Success {
			out.SucceededCount++
		} else if r.Error != "" || r.RetryCount > 0 {
			out.FailedCount++
		}
	}

	return json.Marshal(out)
}

// runBatch processes entities[start:end] with up to in.Parallelism
// concurrent workers, returning true if RollbackOnFailure tripped and the
// caller should stop dispatching further batches.
func (a *BulkOperation) runBatch(ctx context.Context, target Activity, in BulkOperationInput, results []EntityResult, start, end int) bool {
	sem := make(chan struct{}, in.Parallelism)
	var wg sync.WaitGroup
	var rolledBack atomic.Bool

	for i := start; i < end; i++ {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			var retries int
			var lastErr error
			for retries = 0; retries < in.MaxRetriesPerEntity; retries++ {
				_, err := target.Execute(ctx, in.Entities[i])
				if err == nil {
					results[i] = EntityResult{Index: i, Success: true, RetryCount: retries}
					return
				}
				lastErr = err
			}

			results[i] = EntityResult{Index: i, Success: false, Error: lastErr.Error(), RetryCount: retries}
			if in.RollbackOnFailure {
				rolledBack.Store(true)
			}
		}()
	}

	wg.Wait()
	return rolledBack.Load()
}
