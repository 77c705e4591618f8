package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"loud", LogLevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRuntimeLogger_KeyValueAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf}).
		WithComponent("tool").
		WithSession("s1").
		WithContext("user_id", "u1")

	l.Info("tool.phase.validation", "tool", "echo", "ok", true)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "tool.phase.validation", lines[0]["msg"])
	assert.Equal(t, "tool", lines[0]["component"])
	assert.Equal(t, "s1", lines[0]["session_id"])
	assert.Equal(t, "u1", lines[0]["user_id"])
	assert.Equal(t, "echo", lines[0]["tool"])
	assert.Equal(t, true, lines[0]["ok"])
}

func TestRuntimeLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestRuntimeLogger_LogToolCall(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.LogToolCall("echo", 5*time.Millisecond, true, nil)
	l.LogToolCall("echo", time.Millisecond, false, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "tool.execution.completed", lines[0]["msg"])
	assert.Equal(t, true, lines[0]["cached"])
	assert.Equal(t, "tool.execution.failed", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestWithContext_DoesNotMutateParent(t *testing.T) {
	base := NewLogger(&LoggerConfig{Output: &bytes.Buffer{}})
	child := base.WithContext("k", "v")

	assert.Empty(t, base.context)
	assert.Equal(t, "v", child.context["k"])
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(&buf, LogLevelInfo, "json")

	l.Debug("hidden")
	l.Info("orchestration.task.completed", "task_id", "t1")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "orchestration.task.completed", lines[0]["message"])
	assert.Equal(t, "t1", lines[0]["task_id"])
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))
	l := NewDefaultSlogLogger()
	assert.Same(t, l, OrNoOp(l))
}

func TestWorkflowExecution_OnZerolog(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(&buf, LogLevelInfo, "json")

	WorkflowExecution(l, "wf-1", 3, time.Millisecond, nil)
	LLMCall(l, "mock", 7, time.Millisecond, errors.New("down"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "workflow.execution.completed", lines[0]["message"])
	assert.Equal(t, "wf-1", lines[0]["workflow_id"])
	assert.Equal(t, "llm.call.failed", lines[1]["message"])
	assert.Equal(t, "down", lines[1]["error"])
}
