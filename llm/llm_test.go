package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/omniagent/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		out <- args.Get(0).(model.Response)
	}
	close(out)
	close(errCh)
	return out, errCh
}

func (m *mockModel) Info() model.Info { return model.Info{Name: "test-model", Provider: "test"} }

func TestModelService_Process(t *testing.T) {
	m := new(mockModel)
	m.On("Generate", mock.Anything, mock.MatchedBy(func(req model.Request) bool {
		return req.Instructions == "be brief" &&
			len(req.Messages) == 2 &&
			req.Messages[0].Text == "earlier" &&
			req.Messages[1].Text == "hello"
	})).Return(model.Response{Text: "hi there", Usage: &model.TokenUsage{TotalTokens: 4}}, nil)

	svc := NewModelService(m, func(o *Options) { o.Instructions = "be brief" })
	out, err := svc.Process(context.Background(), "hello", []string{"earlier", "  "})
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
	m.AssertExpectations(t)
}

func TestModelService_Errors(t *testing.T) {
	t.Run("model error", func(t *testing.T) {
		m := new(mockModel)
		m.On("Generate", mock.Anything, mock.Anything).Return(model.Response{}, errors.New("quota"))

		_, err := NewModelService(m).Process(context.Background(), "x", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota")
	})

	t.Run("empty text", func(t *testing.T) {
		m := new(mockModel)
		m.On("Generate", mock.Anything, mock.Anything).Return(model.Response{}, nil)

		_, err := NewModelService(m).Process(context.Background(), "x", nil)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestModelService_WithMockModel(t *testing.T) {
	mm := model.NewMockModel("mock", "mock")
	out, err := NewModelService(mm).Process(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: ping", out)
}

func TestMockService_ProcessAndCache(t *testing.T) {
	svc := NewMockService()

	out, err := svc.Process(context.Background(), "hello world", nil)
	require.NoError(t, err)
	assert.Equal(t, "mock response: hello world", out)

	usage := svc.LastUsage()
	assert.Equal(t, 3, usage.PromptTokens)     // ceil(2*1.3)
	assert.Equal(t, 6, usage.CompletionTokens) // ceil(4*1.3)
	assert.Equal(t, 0, usage.CachedTokens)

	_, err = svc.Process(context.Background(), "hello world", nil)
	require.NoError(t, err)
	assert.Equal(t, usage.TotalTokens, svc.LastUsage().CachedTokens)

	_, err = svc.Process(context.Background(), "hello world", []string{"context"})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.CacheStats().Entries)
}

func TestMockService_CleanupCache(t *testing.T) {
	svc := NewMockService()
	now := time.Unix(1000, 0)
	svc.now = func() time.Time { return now }

	_, _ = svc.Process(context.Background(), "a", nil)
	now = now.Add(time.Minute)
	_, _ = svc.Process(context.Background(), "b", nil)

	assert.Equal(t, 1, svc.CleanupCache(30*time.Second))
	assert.Equal(t, 1, svc.CacheStats().Entries)
}

func TestMockService_FailWith(t *testing.T) {
	svc := NewMockService()
	svc.FailWith(errors.New("offline"))
	_, err := svc.Process(context.Background(), "a", nil)
	assert.EqualError(t, err, "offline")

	svc.FailWith(nil)
	_, err = svc.Process(context.Background(), "a", nil)
	assert.NoError(t, err)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 2, EstimateTokens("one"))
	assert.Equal(t, 4, EstimateTokens("one two three"))
}
