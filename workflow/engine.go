// Package workflow sequences orchestration calls, feeding each step's output
// into the next step's input.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/omniagent/internal/util"
	"github.com/hupe1980/omniagent/logging"
	"github.com/hupe1980/omniagent/metrics"
)

// Orchestrator runs a single message to completion.
type Orchestrator interface {
	Orchestrate(ctx context.Context, message string) (string, error)
}

// Options configure an Engine.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.OrchestrationMetrics
}

// Engine stores workflow definitions and executes them step by step.
type Engine struct {
	orch      Orchestrator
	logger    logging.Logger
	metrics   *metrics.OrchestrationMetrics
	mu        sync.RWMutex
	workflows map[string]*Workflow
}

// NewEngine creates a workflow engine on top of orch.
func NewEngine(orch Orchestrator, optFns ...func(o *Options)) *Engine {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		orch:      orch,
		logger:    logging.OrNoOp(opts.Logger),
		metrics:   opts.Metrics,
		workflows: make(map[string]*Workflow),
	}
}

// Register stores wf keyed by its id, replacing any existing definition. State
// fields are reset to Pending with no results.
func (e *Engine) Register(wf Workflow) error {
	if err := wf.Validate(); err != nil {
		return err
	}
	c := wf.clone()
	c.Status = StatusPending
	c.Results = nil
	c.Error = ""

	e.mu.Lock()
	defer e.mu.Unlock()
	e.workflows[c.ID] = &c
	return nil
}

// Execute runs the workflow with initialInput and returns the last step's
// output. The first failing step aborts the run, leaving the workflow Failed
// with the results of the steps that completed.
func (e *Engine) Execute(ctx context.Context, id, initialInput string) (string, error) {
	start := time.Now()

	e.mu.Lock()
	wf, ok := e.workflows[id]
	if !ok {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	wf.Status = StatusRunning
	wf.Error = ""
	steps := wf.clone().Steps
	e.mu.Unlock()

	e.logger.Info("workflow.execution.started", "workflow_id", id, "step_count", len(steps))

	results := make(map[string]string, len(steps))
	current := initialInput
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return "", e.fail(wf, step.ID, results, err, start)
		}
		msg, err := stepInput(step, current, initialInput, results)
		if err != nil {
			return "", e.fail(wf, step.ID, results, err, start)
		}
		out, err := e.orch.Orchestrate(ctx, msg)
		if err != nil {
			return "", e.fail(wf, step.ID, results, err, start)
		}
		e.logger.Debug("workflow.step.completed", "workflow_id", id, "step_id", step.ID)
		results[step.ID] = out
		current = out
	}

	e.mu.Lock()
	if e.current(wf) {
		wf.Status = StatusCompleted
		wf.Results = results
	} else {
		e.logger.Warn("workflow.execution.superseded", "workflow_id", id, "status", StatusCompleted.String())
	}
	e.mu.Unlock()

	e.metrics.ObserveWorkflow(StatusCompleted.String())
	logging.WorkflowExecution(e.logger, id, len(steps), time.Since(start), nil)
	return current, nil
}

// fail records a failed run on wf unless a Register replaced it meanwhile.
func (e *Engine) fail(wf *Workflow, stepID string, results map[string]string, cause error, start time.Time) error {
	id := wf.ID
	err := &StepError{WorkflowID: id, StepID: stepID, Err: cause}

	e.mu.Lock()
	if e.current(wf) {
		wf.Status = StatusFailed
		wf.Results = results
		wf.Error = err.Error()
	} else {
		e.logger.Warn("workflow.execution.superseded", "workflow_id", id, "status", StatusFailed.String())
	}
	e.mu.Unlock()

	e.metrics.ObserveWorkflow(StatusFailed.String())
	logging.WorkflowExecution(e.logger, id, len(results), time.Since(start), err)
	return err
}

// current reports whether wf is still the registered definition for its id.
// Caller must hold e.mu.
func (e *Engine) current(wf *Workflow) bool {
	return e.workflows[wf.ID] == wf
}

func stepInput(step Step, current, initial string, results map[string]string) (string, error) {
	if step.Input == "" {
		return current, nil
	}
	out, err := util.RenderTemplate(step.Input, map[string]any{
		"input":   current,
		"initial": initial,
		"results": results,
	})
	if err != nil {
		return "", fmt.Errorf("render input of step %s: %w", step.ID, err)
	}
	return out, nil
}

// Get returns a copy of the workflow with the given id.
func (e *Engine) Get(id string) (Workflow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	wf, ok := e.workflows[id]
	if !ok {
		return Workflow{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return wf.clone(), nil
}

// Status returns the status of the workflow with the given id.
func (e *Engine) Status(id string) (Status, error) {
	wf, err := e.Get(id)
	if err != nil {
		return StatusPending, err
	}
	return wf.Status, nil
}

// Results returns the per-step results of the last execution.
func (e *Engine) Results(id string) (map[string]string, error) {
	wf, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	return wf.Results, nil
}

// List returns copies of all workflows sorted by id.
func (e *Engine) List() []Workflow {
	e.mu.RLock()
	out := make([]Workflow, 0, len(e.workflows))
	for _, wf := range e.workflows {
		out = append(out, wf.clone())
	}
	e.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
