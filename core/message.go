package core

import (
	"time"

	"github.com/google/uuid"
)

// MessageType classifies a buffered conversation event.
type MessageType int

const (
	// UserMessage is inbound user text.
	UserMessage MessageType = iota
	// SystemMessage is runtime generated text (failures, notices).
	SystemMessage
	// ToolResponse is output produced by a tool.
	ToolResponse
	// LLMResponse is output produced by a model or peer agent.
	LLMResponse
)

// String returns the string representation of the message type.
func (t MessageType) String() string {
	switch t {
	case UserMessage:
		return "user"
	case SystemMessage:
		return "system"
	case ToolResponse:
		return "tool"
	case LLMResponse:
		return "llm"
	default:
		return "unknown"
	}
}

// BufferedMessage is one entry of a conversation buffer.
//
// ContextRelevance is an advisory score in [0,1]; buffers never use it as an
// eviction criterion.
type BufferedMessage struct {
	ID               string      `json:"id"`
	Content          string      `json:"content"`
	Timestamp        time.Time   `json:"timestamp"`
	Type             MessageType `json:"message_type"`
	ContextRelevance float64     `json:"context_relevance"`
}

// NewBufferedMessage creates a message with a fresh id and the current time.
// The relevance score is clamped into [0,1].
func NewBufferedMessage(t MessageType, content string, relevance float64) BufferedMessage {
	switch {
	case relevance < 0:
		relevance = 0
	case relevance > 1:
		relevance = 1
	}

	return BufferedMessage{
		ID:               uuid.NewString(),
		Content:          content,
		Timestamp:        time.Now(),
		Type:             t,
		ContextRelevance: relevance,
	}
}
