package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolError_Is(t *testing.T) {
	err := NewToolError("x", "missing", ToolNotFound)
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.NotErrorIs(t, err, ErrExecutionFailed)
	assert.Equal(t, "tool error [TOOL_NOT_FOUND] in x: missing", err.Error())

	cause := errors.New("disk full")
	wrapped := &ToolError{Tool: "x", Code: ExecutionFailed, Message: "boom", Err: cause}
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, ErrExecutionFailed)
}

func TestFunctionTool_Execute(t *testing.T) {
	ft := NewFunctionTool("sum", "adds", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	out, err := ft.Execute(context.Background(), map[string]any{"a": 1.0, "b": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, out)

	_, err = ft.Execute(context.Background(), map[string]any{"a": 1.0})
	assert.ErrorIs(t, err, ErrValidationFailed)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestFunctionTool_ErrorMapping(t *testing.T) {
	plain := NewFunctionTool("p", "", nil, func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("nope")
	})
	_, err := plain.Execute(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, ErrExecutionFailed)

	custom := NewFunctionTool("c", "", nil, func(context.Context, map[string]any) (any, error) {
		return nil, NewToolError("c", "denied", PermissionDenied)
	})
	_, err = custom.Execute(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestFunctionTool_WithoutCache(t *testing.T) {
	ft := NewEchoTool()
	assert.True(t, ft.Cacheable())
	assert.False(t, ft.WithoutCache().Cacheable())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewWordCountTool()))
	require.NoError(t, r.Register(NewEchoTool()))
	assert.Error(t, r.Register(nil))

	_, ok := r.Get("echo")
	assert.True(t, ok)

	names := []string{}
	for _, tl := range r.List() {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"echo", "word_count"}, names)

	r.Unregister("echo")
	_, ok = r.Get("echo")
	assert.False(t, ok)
}

func TestBuiltins(t *testing.T) {
	ctx := context.Background()

	out, err := NewWordCountTool().Execute(ctx, map[string]any{"input": "one two three"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"words": 3}, out)

	out, err = NewFileProcessorTool().Execute(ctx, map[string]any{"input": "a b\nc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"lines": 2, "words": 3, "bytes": 5}, out)

	_, err = NewEchoTool().Execute(ctx, map[string]any{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.Len(t, Builtins(), 4)
}

func TestPhaseAndStatusStrings(t *testing.T) {
	assert.Equal(t, "concurrency_acquire", PhaseConcurrencyAcquire.String())
	assert.Equal(t, "cleanup", PhaseCleanup.String())
	assert.Equal(t, "failed", StatusFailed.String())

	b, err := PhaseInvoke.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "invoke", string(b))
}

func TestExecutionContext_HasPermission(t *testing.T) {
	ec := ExecutionContext{Permissions: []string{"read", AdminPermission}}
	assert.True(t, ec.HasPermission("admin"))
	assert.False(t, ec.HasPermission("write"))
}
