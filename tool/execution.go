package tool

import (
	"encoding/json"
	"slices"
	"time"
)

// Phase identifies one step of the execution lifecycle.
type Phase int

const (
	PhaseValidation Phase = iota + 1
	PhasePermissionCheck
	PhaseConcurrencyAcquire
	PhaseCacheLookup
	PhaseInvoke
	PhaseResultValidation
	PhaseCacheStore
	PhaseCleanup
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseValidation:
		return "validation"
	case PhasePermissionCheck:
		return "permission_check"
	case PhaseConcurrencyAcquire:
		return "concurrency_acquire"
	case PhaseCacheLookup:
		return "cache_lookup"
	case PhaseInvoke:
		return "invoke"
	case PhaseResultValidation:
		return "result_validation"
	case PhaseCacheStore:
		return "cache_store"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Status is the state of an ExecutionResult.
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

// ExecutionContext is supplied by the caller for every invocation.
type ExecutionContext struct {
	UserID      string   `json:"user_id"`
	SessionID   string   `json:"session_id"`
	Permissions []string `json:"permissions"`
	// MaxConcurrent is advisory; the pipeline gate is sized at construction.
	MaxConcurrent int `json:"max_concurrent,omitempty"`
	// CacheTTL overrides the pipeline TTL when positive.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`
	// Timeout bounds the invoke phase when positive.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// HasPermission reports whether p is granted.
func (c ExecutionContext) HasPermission(p string) bool {
	return slices.Contains(c.Permissions, p)
}

// ExecutionResult describes one pipeline invocation. Result is set iff Status
// is StatusCompleted and Error iff Status is StatusFailed. Phase is the phase
// running (or failed) when the result was produced.
type ExecutionResult struct {
	ID            string          `json:"id"`
	ToolName      string          `json:"tool_name"`
	Status        Status          `json:"status"`
	Phase         Phase           `json:"phase"`
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
	Cached        bool            `json:"cached"`
	ExecutionTime time.Duration   `json:"execution_time"`
}
