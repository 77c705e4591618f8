package workflow

import (
	"fmt"
	"maps"

	"github.com/hupe1980/omniagent/core"
)

// Status is the lifecycle state of a Workflow.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Step is one orchestration call of a workflow.
//
// Dependencies and Condition are carried for callers but not evaluated: steps
// run strictly in list order. Input, when set, is a text/template rendered
// with .input (previous output), .initial and .results to build the message.
type Step struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Condition    string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Input        string   `json:"input,omitempty" yaml:"input,omitempty"`
}

// Workflow is an ordered chain of steps and its execution state.
type Workflow struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step            `json:"steps" yaml:"steps"`
	Status      Status            `json:"status" yaml:"-"`
	Results     map[string]string `json:"results,omitempty" yaml:"-"`
	Error       string            `json:"error,omitempty" yaml:"-"`
}

// Validate checks that the workflow has an id and that step ids are non-empty
// and unique.
func (w Workflow) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("workflow id is required")
	}
	seen := make(map[string]struct{}, len(w.Steps))
	for i, s := range w.Steps {
		if s.ID == "" {
			return fmt.Errorf("workflow %s: step %d has no id", w.ID, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("workflow %s: duplicate step id %q", w.ID, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

func (w Workflow) clone() Workflow {
	c := w
	c.Steps = make([]Step, len(w.Steps))
	for i, s := range w.Steps {
		s.Dependencies = append([]string(nil), s.Dependencies...)
		c.Steps[i] = s
	}
	c.Results = maps.Clone(w.Results)
	return c
}

// ErrNotFound is returned for unknown workflow ids.
var ErrNotFound = fmt.Errorf("workflow %w", core.ErrNotFound)

// StepError reports the step that aborted a workflow.
type StepError struct {
	WorkflowID string
	StepID     string
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow %s failed at step %s: %v", e.WorkflowID, e.StepID, e.Err)
}

// Unwrap returns the step error.
func (e *StepError) Unwrap() error { return e.Err }
