package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CountingTool records how often it was executed and returns Result (or its
// parameters when Result is nil).
type CountingTool struct {
	ToolName string
	Result   any
	calls    atomic.Int64
}

// NewCountingTool creates a CountingTool.
func NewCountingTool(name string, result any) *CountingTool {
	return &CountingTool{ToolName: name, Result: result}
}

func (t *CountingTool) Name() string        { return t.ToolName }
func (t *CountingTool) Description() string { return "counts executions" }

// Execute implements the tool contract.
func (t *CountingTool) Execute(_ context.Context, params map[string]any) (any, error) {
	t.calls.Add(1)
	if t.Result != nil {
		return t.Result, nil
	}
	return params, nil
}

// Calls returns the number of Execute calls.
func (t *CountingTool) Calls() int { return int(t.calls.Load()) }

// SlowTool sleeps for Delay (or until ctx is done) while tracking how many
// executions overlap.
type SlowTool struct {
	ToolName string
	Delay    time.Duration
	// IgnoreContext makes the tool sleep the full Delay even after ctx is done.
	IgnoreContext bool

	mu      sync.Mutex
	running int
	peak    int
	calls   int
}

// NewSlowTool creates a SlowTool.
func NewSlowTool(name string, delay time.Duration) *SlowTool {
	return &SlowTool{ToolName: name, Delay: delay}
}

func (t *SlowTool) Name() string        { return t.ToolName }
func (t *SlowTool) Description() string { return "sleeps then returns its parameters" }

// Execute implements the tool contract.
func (t *SlowTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	t.mu.Lock()
	t.running++
	t.calls++
	if t.running > t.peak {
		t.peak = t.running
	}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.running--
		t.mu.Unlock()
	}()

	if t.IgnoreContext {
		time.Sleep(t.Delay)
		return params, nil
	}
	select {
	case <-time.After(t.Delay):
		return params, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peak returns the highest number of overlapping executions observed.
func (t *SlowTool) Peak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

// Calls returns the number of Execute calls.
func (t *SlowTool) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// FailingTool always returns Err.
type FailingTool struct {
	ToolName string
	Err      error
}

func (t *FailingTool) Name() string        { return t.ToolName }
func (t *FailingTool) Description() string { return "always fails" }

// Execute implements the tool contract.
func (t *FailingTool) Execute(context.Context, map[string]any) (any, error) {
	return nil, t.Err
}

// PanicTool panics with Value.
type PanicTool struct {
	ToolName string
	Value    any
}

func (t *PanicTool) Name() string        { return t.ToolName }
func (t *PanicTool) Description() string { return "always panics" }

// Execute implements the tool contract.
func (t *PanicTool) Execute(context.Context, map[string]any) (any, error) {
	panic(t.Value)
}

// ValueTool returns Value unchanged, including nil or empty values.
type ValueTool struct {
	ToolName string
	Value    any
}

func (t *ValueTool) Name() string        { return t.ToolName }
func (t *ValueTool) Description() string { return "returns a fixed value" }

// Execute implements the tool contract.
func (t *ValueTool) Execute(context.Context, map[string]any) (any, error) {
	return t.Value, nil
}
