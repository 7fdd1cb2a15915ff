// Package workflows is the library of named business workflows: onboarding,
// tenant lifecycle, file upload, module install, license lifecycle, GDPR
// requests, bulk operations, data retention, and the AI request pipeline.
// Each workflow is a Definition made of ordered activity invocations, run by
// Engine against an activity.Registry and exposed to the workflow provider
// abstraction the same way the original tenant-provisioning Restate service
// exposed its single operation-dispatch handler.
package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adxcore/orchestrator/internal/activity"
	"github.com/adxcore/orchestrator/internal/workflow"
)

// StepFunc builds a step's input from the accumulated run state.
type StepFunc func(state map[string]json.RawMessage) (json.RawMessage, error)

// Condition decides whether a step should run, given accumulated state.
// A nil Condition always runs.
type Condition func(state map[string]json.RawMessage) bool

// Step is one activity invocation within a Definition.
type Step struct {
	Name      string
	Activity  string
	Input     StepFunc
	Condition Condition
}

// Definition is a named workflow: an ordered sequence of activity steps.
type Definition struct {
	Name  string
	Steps []Step
}

// Library holds the registered workflow Definitions.
type Library struct {
	definitions map[string]*Definition
}

// NewLibrary creates an empty workflow library.
func NewLibrary() *Library {
	return &Library{definitions: make(map[string]*Definition)}
}

// Register adds a Definition to the library.
func (l *Library) Register(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("workflow definition name cannot be empty")
	}
	if _, exists := l.definitions[def.Name]; exists {
		return fmt.Errorf("workflow definition already registered: %s", def.Name)
	}
	l.definitions[def.Name] = def
	return nil
}

// Get retrieves a Definition by name.
func (l *Library) Get(name string) (*Definition, error) {
	def, ok := l.definitions[name]
	if !ok {
		return nil, fmt.Errorf("workflow definition not found: %s", name)
	}
	return def, nil
}

// Names lists every registered workflow name.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.definitions))
	for name := range l.definitions {
		names = append(names, name)
	}
	return names
}

// Engine runs Definitions step by step against an activity registry,
// threading each step's output into a shared state map later steps (and
// their Conditions) can read from.
type Engine struct {
	activities *activity.Registry
}

// NewEngine constructs an Engine over the given activity registry.
func NewEngine(activities *activity.Registry) *Engine {
	return &Engine{activities: activities}
}

// Run executes every step of def in order, skipping steps whose Condition
// returns false, and returns the final run state plus a workflow.ExecutionStatus
// summarizing the outcome.
func (e *Engine) Run(ctx context.Context, def *Definition, initialInput json.RawMessage) (map[string]json.RawMessage, *workflow.ExecutionStatus, error) {
	state := map[string]json.RawMessage{"input": initialInput}
	started := time.Now().UTC()

	var events []workflow.ExecutionEvent
	for _, step := range def.Steps {
		if step.Condition != nil && !step.Condition(state) {
			continue
		}

		input, err := step.Input(state)
		if err != nil {
			return state, failedStatus(def.Name, started, events, fmt.Errorf("build input for step %s: %w", step.Name, err)), err
		}

		result, err := e.activities.Invoke(ctx, step.Activity, input)
		events = append(events, workflow.ExecutionEvent{
			Timestamp: result.StartedAt,
			Type:      "activity_completed",
			Details:   json.RawMessage(fmt.Sprintf(`{"step":%q,"activity":%q}`, step.Name, step.Activity)),
		})
		if err != nil {
			return state, failedStatus(def.Name, started, events, fmt.Errorf("step %s (%s): %w", step.Name, step.Activity, err)), err
		}

		state[step.Name] = result.Output
	}

	output, _ := json.Marshal(state)
	return state, &workflow.ExecutionStatus{
		WorkflowID: def.Name,
		State:      workflow.StateSucceeded,
		StartTime:  started,
		Output:     output,
		History:    events,
	}, nil
}

func failedStatus(name string, started time.Time, events []workflow.ExecutionEvent, err error) *workflow.ExecutionStatus {
	now := time.Now().UTC()
	return &workflow.ExecutionStatus{
		WorkflowID: name,
		State:      workflow.StateFailed,
		StartTime:  started,
		StopTime:   &now,
		Error:      &workflow.ExecutionError{Message: err.Error()},
		History:    events,
	}
}
