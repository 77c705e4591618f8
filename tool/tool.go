// Package tool implements the tool subsystem: the Tool capability contract, a
// schema validated FunctionTool adapter, a concurrent Registry and the Pipeline
// that drives every invocation through a fixed eight phase lifecycle
// (validation, permission check, concurrency acquire, cache lookup, invoke,
// result validation, cache store, cleanup).
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/omniagent/internal/util"
)

// Tool defines a callable capability exposed to the runtime.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Honour ctx cancellation for long running work
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Execute runs the tool with structured parameters.
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// Cacheable is implemented by tools that decide whether their results may be
// served from the pipeline cache. Tools that do not implement it are cached.
type Cacheable interface {
	Cacheable() bool
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes used by ToolError.
const (
	ValidationFailed         = "VALIDATION_FAILED"
	PermissionDenied         = "PERMISSION_DENIED"
	ConcurrencyLimitExceeded = "CONCURRENCY_LIMIT_EXCEEDED"
	ToolNotFound             = "TOOL_NOT_FOUND"
	ExecutionFailed          = "EXECUTION_FAILED"
)

// Sentinels for errors.Is matching against ToolError codes.
var (
	ErrValidationFailed         = &ToolError{Code: ValidationFailed}
	ErrPermissionDenied         = &ToolError{Code: PermissionDenied}
	ErrConcurrencyLimitExceeded = &ToolError{Code: ConcurrencyLimitExceeded}
	ErrToolNotFound             = &ToolError{Code: ToolNotFound}
	ErrExecutionFailed          = &ToolError{Code: ExecutionFailed}
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Phase   Phase  `json:"phase,omitempty"`   // Lifecycle phase that failed
	Details any    `json:"details,omitempty"` // Additional error details
	Err     error  `json:"-"`                 // Underlying cause, if any
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Is reports whether target is a ToolError with the same code.
func (e *ToolError) Is(target error) bool {
	t, ok := target.(*ToolError)
	return ok && t.Code == e.Code
}

// Unwrap returns the underlying cause.
func (e *ToolError) Unwrap() error { return e.Err }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
