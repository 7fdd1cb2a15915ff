// Package activity provides the library of business activities invoked by
// workflows: small, idempotent units of work (validation, hashing, storage,
// billing, notification, audit) that a workflow definition composes into a
// larger operation.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Activity is a single unit of work a workflow can invoke by name.
type Activity interface {
	// Name returns the unique activity identifier, e.g. "validate_user".
	Name() string

	// Execute runs the activity against a JSON-encoded input payload and
	// returns a JSON-encoded result.
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

	// DefaultRetryPolicy returns the retry behavior a workflow should apply
	// when this activity fails transiently.
	DefaultRetryPolicy() RetryPolicy
}

// RetryPolicy mirrors workflow.RetryPolicy so activities can declare their
// own defaults without importing the workflow package.
type RetryPolicy struct {
	MaxAttempts     int           `json:"max_attempts"`
	BackoffRate     float64       `json:"backoff_rate"`
	InitialInterval time.Duration `json:"initial_interval"`
	MaxInterval     time.Duration `json:"max_interval"`
}

// DefaultRetryPolicy is the baseline retry policy used by activities that
// don't need a custom one: three attempts, exponential backoff starting at
// one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		BackoffRate:     2.0,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// Result wraps an activity's outcome with the bookkeeping a caller needs to
// record to the audit log and usage tracker.
type Result struct {
	Output    json.RawMessage `json:"output,omitempty"`
	Error     string          `json:"error,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
}

var (
	// ErrNotFound is returned when a requested activity isn't registered.
	ErrNotFound = fmt.Errorf("activity not found")
	// ErrConflict is returned when registering a duplicate activity name.
	ErrConflict = fmt.Errorf("activity already registered")
)

// Registry holds the set of activities a worker can execute, keyed by name.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]Activity
	logger     *zap.Logger
}

// NewRegistry creates an empty activity registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		activities: make(map[string]Activity),
		logger:     logger.With(zap.String("component", "activity-registry")),
	}
}

// Register adds an activity to the registry.
func (r *Registry) Register(a Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if name == "" {
		return fmt.Errorf("activity name cannot be empty")
	}
	if _, exists := r.activities[name]; exists {
		return fmt.Errorf("%w: %s", ErrConflict, name)
	}
	r.activities[name] = a
	r.logger.Info("registered activity", zap.String("activity", name))
	return nil
}

// Get retrieves an activity by name.
func (r *Registry) Get(name string) (Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.activities[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return a, nil
}

// List returns all registered activity names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.activities))
	for name := range r.activities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs a named activity and times its execution.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (*Result, error) {
	a, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	res := &Result{StartedAt: time.Now().UTC()}
	out, err := a.Execute(ctx, input)
	res.EndedAt = time.Now().UTC()
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Output = out
	return res, nil
}
