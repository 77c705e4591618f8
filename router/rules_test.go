package router

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/omniagent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleRouter_HighestPriorityWins(t *testing.T) {
	r := NewRuleRouter(nil)
	require.NoError(t, r.Register(Rule{ID: "low", Name: "low", Condition: "report", Target: core.RemoteAgent("archive"), Confidence: 0.5, Priority: 1, Enabled: true}))
	require.NoError(t, r.Register(Rule{ID: "high", Name: "weather rule", Description: "weather reports", Condition: "report", Target: core.RemoteAgent("weather_agent"), Confidence: 0.8, Priority: 100, Enabled: true}))

	d := r.Decide("weekly REPORT")
	assert.Equal(t, core.RemoteAgent("weather_agent"), d.Target)
	assert.InDelta(t, 0.8, d.Confidence, 1e-9)
	assert.Equal(t, "matched rule 'weather rule': weather reports", d.Reasoning)
}

func TestRuleRouter_TieBrokenByID(t *testing.T) {
	r := NewRuleRouter(nil)
	require.NoError(t, r.Register(Rule{ID: "b", Condition: MatchAll, Target: core.RemoteTool("b"), Priority: 5, Enabled: true}))
	require.NoError(t, r.Register(Rule{ID: "a", Condition: MatchAll, Target: core.RemoteTool("a"), Priority: 5, Enabled: true}))

	for i := 0; i < 10; i++ {
		assert.Equal(t, core.RemoteTool("a"), r.Decide("x").Target)
	}
}

func TestRuleRouter_DisabledAndFallback(t *testing.T) {
	r := NewRuleRouter(NewKeywordRouter())
	require.NoError(t, r.Register(Rule{ID: "off", Condition: MatchAll, Target: core.RemoteTool("never"), Priority: 9, Enabled: false}))

	assert.Equal(t, core.RemoteAgent(InfoAgent), r.Decide("weather").Target)
	assert.Equal(t, core.LocalLLM(), r.Decide("hello").Target)
}

func TestRuleRouter_RegisterValidation(t *testing.T) {
	r := NewRuleRouter(nil)
	assert.Error(t, r.Register(Rule{}))
	assert.Error(t, r.Register(Rule{ID: "bad", Confidence: 1.5}))
}

func TestRuleRouter_RemoveAndList(t *testing.T) {
	r := NewRuleRouter(nil)
	require.NoError(t, r.Register(Rule{ID: "one", Priority: 1}))
	require.NoError(t, r.Register(Rule{ID: "two", Priority: 2}))

	rules := r.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "two", rules[0].ID)

	r.Remove("two")
	r.Remove("missing")
	assert.Len(t, r.Rules(), 1)
}

func TestRuleRouter_LearningRecords(t *testing.T) {
	r := NewRuleRouter(nil)
	assert.Empty(t, r.LearningRecords())

	rec := r.RecordLearning("task-1", "weather?", "answered", 3)
	assert.NotEmpty(t, rec.ID)
	assert.InDelta(t, 1.0, rec.Feedback, 1e-9)

	r.RecordLearning("task-2", "hi", "wrong target", -0.5)
	records := r.LearningRecords()
	require.Len(t, records, 2)
	assert.Equal(t, "task-1", records[0].DecisionID)
	assert.InDelta(t, -0.5, records[1].Feedback, 1e-9)

	records[0].Outcome = "mutated"
	assert.Equal(t, "answered", r.LearningRecords()[0].Outcome)
}

func TestRuleRouter_LearningRecordsBounded(t *testing.T) {
	r := NewRuleRouter(nil)
	for i := 0; i < MaxLearningRecords+5; i++ {
		r.RecordLearning(fmt.Sprintf("d%d", i), "", "", 0)
	}
	records := r.LearningRecords()
	require.Len(t, records, MaxLearningRecords)
	assert.Equal(t, "d5", records[0].DecisionID)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want core.RouteTarget
	}{
		{"local_llm", core.LocalLLM()},
		{"remote_agent(info_agent)", core.RemoteAgent("info_agent")},
		{" remote_tool(word_count) ", core.RemoteTool("word_count")},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, strings.TrimSpace(tt.in), got.String())
	}

	for _, bad := range []string{"", "llm", "remote_tool()", "remote_agent(x"} {
		_, err := ParseTarget(bad)
		assert.Error(t, err, bad)
	}
}
