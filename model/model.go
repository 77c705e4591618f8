package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Roles used in Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role tagged text turn.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request captures the normalized model input produced by the llm service.
type Request struct {
	Instructions string    `json:"instructions"` // System instructions for the model
	Messages     []Message `json:"messages"`     // Conversation turns, oldest first
	Stream       bool      `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"` // Indicates if this is a partial response
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive generation. Generate emits
// zero or more partial responses followed by exactly one final response, or a
// single error. Both channels are closed when generation ends.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// LastUserText returns the text of the newest user message in req.
func LastUserText(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			return req.Messages[i].Text
		}
	}
	return ""
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	mu        sync.RWMutex
	responses map[string]string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes every subsequent Generate call fail with err (nil resets).
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Generate implements Model; emits optional streaming word chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.RLock()
	failure := m.err
	input := LastUserText(req)
	full := m.responses[input]
	m.mu.RUnlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if failure != nil {
			errCh <- failure
			return
		}
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", input)
		}
		if req.Stream {
			for _, w := range strings.SplitAfter(full, " ") {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: w}:
				}
			}
		}
		respCh <- Response{
			Partial:      false,
			Text:         full,
			FinishReason: "stop",
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

// Collect drains a Generate call and returns the final response text. Partial
// chunks are ignored; the final chunk carries the complete text.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)
	var final *Response
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				rr := r
				final = &rr
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}
	if final == nil {
		return Response{}, fmt.Errorf("model %s returned no final response", m.Info().Name)
	}
	return *final, nil
}
