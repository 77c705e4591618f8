package orchestration

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/omniagent/core"
)

// TaskStatus is the lifecycle state of a Task.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskCompleted
	TaskFailed
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name.
func (s TaskStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether s is Completed or Failed.
func (s TaskStatus) Terminal() bool { return s == TaskCompleted || s == TaskFailed }

// Task is one tracked unit of work created from a single routing decision.
// Result is set iff Status is TaskCompleted; Error iff Status is TaskFailed.
type Task struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	SessionID    string           `json:"session_id,omitempty"`
	Input        string           `json:"input"`
	Target       core.RouteTarget `json:"target"`
	Confidence   float64          `json:"confidence"`
	Status       TaskStatus       `json:"status"`
	Dependencies []string         `json:"dependencies,omitempty"`
	Result       string           `json:"result,omitempty"`
	Error        string           `json:"error,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	seq uint64
}

func (t *Task) clone() Task {
	c := *t
	if t.Dependencies != nil {
		c.Dependencies = append([]string(nil), t.Dependencies...)
	}
	return c
}

// ErrTaskNotFound is returned for unknown task ids.
var ErrTaskNotFound = fmt.Errorf("task %w", core.ErrNotFound)

// TaskError reports a failed orchestration task.
type TaskError struct {
	TaskID string
	Target core.RouteTarget
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s (%s) failed: %v", e.TaskID, e.Target, e.Err)
}

// Unwrap returns the collaborator error.
func (e *TaskError) Unwrap() error { return e.Err }

// IsTaskError reports whether err wraps a *TaskError.
func IsTaskError(err error) bool {
	var te *TaskError
	return errors.As(err, &te)
}
