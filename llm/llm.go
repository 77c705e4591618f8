// Package llm defines the language model collaborator used by the
// orchestration engine for LocalLLM targets, plus two implementations: a
// ModelService adapting any model.Model and an in-process MockService.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/omniagent/logging"
	"github.com/hupe1980/omniagent/model"
)

// Service processes a message with optional conversation context (oldest first).
type Service interface {
	Process(ctx context.Context, text string, history []string) (string, error)
}

// Func adapts a plain function to the Service interface.
type Func func(ctx context.Context, text string, history []string) (string, error)

// Process calls f.
func (f Func) Process(ctx context.Context, text string, history []string) (string, error) {
	return f(ctx, text, history)
}

// ErrEmptyResponse is returned when a model produces no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Options configure a ModelService.
type Options struct {
	// Instructions are sent as the system prompt on every call.
	Instructions string
	Logger       logging.Logger
}

// ModelService adapts a model.Model to the Service contract. History entries
// are replayed as prior user turns.
type ModelService struct {
	model  model.Model
	opts   Options
	logger logging.Logger
}

// NewModelService wraps m.
func NewModelService(m model.Model, optFns ...func(o *Options)) *ModelService {
	opts := Options{
		Instructions: "You are a helpful assistant.",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelService{model: m, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// Process implements Service.
func (s *ModelService) Process(ctx context.Context, text string, history []string) (string, error) {
	req := model.Request{Instructions: s.opts.Instructions}
	for _, h := range history {
		if strings.TrimSpace(h) == "" {
			continue
		}
		req.Messages = append(req.Messages, model.Message{Role: model.RoleUser, Text: h})
	}
	req.Messages = append(req.Messages, model.Message{Role: model.RoleUser, Text: text})

	start := time.Now()
	resp, err := model.Collect(ctx, s.model, req)
	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	if err == nil && resp.Text == "" {
		err = ErrEmptyResponse
	}
	logging.LLMCall(s.logger, s.model.Info().Name, tokens, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", s.model.Info().Name, err)
	}
	return resp.Text, nil
}
