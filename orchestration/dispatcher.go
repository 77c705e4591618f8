package orchestration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/omniagent/core"
	"github.com/hupe1980/omniagent/tool"
)

// Dispatcher delivers a message to a remote agent or tool target. Real
// transports plug in here without changing the task lifecycle.
type Dispatcher interface {
	Dispatch(ctx context.Context, target core.RouteTarget, message string) (string, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, target core.RouteTarget, message string) (string, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, target core.RouteTarget, message string) (string, error) {
	return f(ctx, target, message)
}

// PlaceholderDispatcher resolves remote targets to a deterministic string
// embedding the target name and the original message.
type PlaceholderDispatcher struct{}

// Dispatch implements Dispatcher.
func (PlaceholderDispatcher) Dispatch(ctx context.Context, target core.RouteTarget, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch target.Kind {
	case core.TargetRemoteAgent:
		return fmt.Sprintf("remote agent %s handled: %s", target.Name, message), nil
	case core.TargetRemoteTool:
		return fmt.Sprintf("remote tool %s handled: %s", target.Name, message), nil
	default:
		return "", fmt.Errorf("placeholder dispatcher cannot handle target %s", target)
	}
}

// ToolExecutor is the subset of *tool.Pipeline used by ToolDispatcher.
type ToolExecutor interface {
	Tool(name string) (tool.Tool, bool)
	ExecuteTool(ctx context.Context, name string, params map[string]any, execCtx tool.ExecutionContext) (*tool.ExecutionResult, error)
}

// ToolDispatcherOptions configure a ToolDispatcher.
type ToolDispatcherOptions struct {
	// Fallback handles targets without a registered tool (default PlaceholderDispatcher).
	Fallback Dispatcher
	// ExecutionContext is passed to every pipeline call.
	ExecutionContext tool.ExecutionContext
}

// ToolDispatcher sends RemoteTool targets with a registered tool of the same
// name through the tool pipeline as {"input": message}. Every other target
// goes to the fallback.
type ToolDispatcher struct {
	tools ToolExecutor
	opts  ToolDispatcherOptions
}

// NewToolDispatcher creates a ToolDispatcher over tools.
func NewToolDispatcher(tools ToolExecutor, optFns ...func(o *ToolDispatcherOptions)) *ToolDispatcher {
	opts := ToolDispatcherOptions{Fallback: PlaceholderDispatcher{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Fallback == nil {
		opts.Fallback = PlaceholderDispatcher{}
	}
	return &ToolDispatcher{tools: tools, opts: opts}
}

// Dispatch implements Dispatcher.
func (d *ToolDispatcher) Dispatch(ctx context.Context, target core.RouteTarget, message string) (string, error) {
	if target.Kind != core.TargetRemoteTool {
		return d.opts.Fallback.Dispatch(ctx, target, message)
	}
	if _, ok := d.tools.Tool(target.Name); !ok {
		return d.opts.Fallback.Dispatch(ctx, target, message)
	}
	res, err := d.tools.ExecuteTool(ctx, target.Name, map[string]any{"input": message}, d.opts.ExecutionContext)
	if err != nil {
		return "", err
	}
	return resultText(res.Result), nil
}

// resultText unquotes JSON strings and returns other JSON values verbatim.
func resultText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
