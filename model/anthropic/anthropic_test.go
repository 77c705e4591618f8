package anthropic

import (
	"testing"

	"github.com/hupe1980/omniagent/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessages_SkipsSystemAndEmpty(t *testing.T) {
	msgs := buildMessages([]model.Message{
		{Role: model.RoleSystem, Text: "be nice"},
		{Role: model.RoleUser, Text: "hi"},
		{Role: model.RoleAssistant, Text: ""},
		{Role: model.RoleAssistant, Text: "hello"},
	})
	assert.Len(t, msgs, 2)
}

func TestExtractSystem(t *testing.T) {
	blocks := extractSystem(model.Request{
		Instructions: "top",
		Messages:     []model.Message{{Role: model.RoleSystem, Text: "inner"}, {Role: model.RoleUser, Text: "u"}},
	})
	if assert.Len(t, blocks, 2) {
		assert.Equal(t, "top", blocks[0].Text)
		assert.Equal(t, "inner", blocks[1].Text)
	}
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.NotEmpty(t, m.Info().Name)
}
