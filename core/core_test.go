package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteTarget_String(t *testing.T) {
	assert.Equal(t, "local_llm", LocalLLM().String())
	assert.Equal(t, "remote_agent(info_agent)", RemoteAgent("info_agent").String())
	assert.Equal(t, "remote_tool(file_processor)", RemoteTool("file_processor").String())
	assert.Equal(t, "unknown", TargetKind(42).String())
}

func TestNewBufferedMessage(t *testing.T) {
	m1 := NewBufferedMessage(UserMessage, "hello", 0.8)
	m2 := NewBufferedMessage(UserMessage, "hello", 0.8)

	assert.NotEmpty(t, m1.ID)
	assert.NotEqual(t, m1.ID, m2.ID)
	assert.Equal(t, "hello", m1.Content)
	assert.Equal(t, UserMessage, m1.Type)
	assert.InDelta(t, 0.8, m1.ContextRelevance, 1e-9)
	assert.False(t, m1.Timestamp.IsZero())
}

func TestNewBufferedMessage_ClampsRelevance(t *testing.T) {
	assert.Equal(t, 0.0, NewBufferedMessage(SystemMessage, "x", -3).ContextRelevance)
	assert.Equal(t, 1.0, NewBufferedMessage(SystemMessage, "x", 7).ContextRelevance)
}

func TestMessageType_String(t *testing.T) {
	tests := map[MessageType]string{
		UserMessage:    "user",
		SystemMessage:  "system",
		ToolResponse:   "tool",
		LLMResponse:    "llm",
		MessageType(9): "unknown",
	}
	for mt, want := range tests {
		assert.Equal(t, want, mt.String())
	}
}
