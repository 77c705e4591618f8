package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omniagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
buffer:
  size: 20
tools:
  max_concurrent: 2
  cache_ttl: 30s
  fail_fast: true
llm:
  provider: openai
  model: gpt-4o-mini
`), 0o600))

	t.Setenv("OMNI_AGENT_TOOLS_MAX_CONCURRENT", "7")
	t.Setenv("OMNI_AGENT_CACHE_REDIS_PREFIX", "test:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Buffer.Size)
	assert.Equal(t, 7, cfg.Tools.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Tools.CacheTTL)
	assert.True(t, cfg.Tools.FailFast)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "test:", cfg.Cache.Redis.Prefix)
	assert.Equal(t, 10000, cfg.Orchestration.TaskCapacity)
}

func TestLoad_RouterRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omniagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
router:
  rules:
    - id: count
      name: Count words
      condition: count
      target: remote_tool(word_count)
      confidence: 0.95
      priority: 10
    - id: off
      condition: "*"
      target: local_llm
      disabled: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Router.Rules, 2)
	assert.Equal(t, RuleConfig{
		ID: "count", Name: "Count words", Condition: "count",
		Target: "remote_tool(word_count)", Confidence: 0.95, Priority: 10,
	}, cfg.Router.Rules[0])
	assert.True(t, cfg.Router.Rules[1].Disabled)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tools: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OMNI_AGENT_LLM_PROVIDER", "gemini")

	_, err := Load("")
	assert.ErrorContains(t, err, "invalid llm provider")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"buffer size", func(c *Config) { c.Buffer.Size = 0 }, "buffer.size"},
		{"max concurrent", func(c *Config) { c.Tools.MaxConcurrent = -1 }, "tools.max_concurrent"},
		{"negative ttl", func(c *Config) { c.Tools.CacheTTL = -time.Second }, "tools.cache_ttl"},
		{"task capacity", func(c *Config) { c.Orchestration.TaskCapacity = 0 }, "task_capacity"},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "invalid cache backend"},
		{"redis addr", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.Redis.Addr = "" }, "cache.redis.addr"},
		{"log backend", func(c *Config) { c.Log.Backend = "logrus" }, "invalid log backend"},
		{"rule id", func(c *Config) { c.Router.Rules = []RuleConfig{{Condition: "x", Target: "local_llm"}} }, "router.rules[0].id"},
		{"rule duplicate", func(c *Config) {
			c.Router.Rules = []RuleConfig{{ID: "a", Condition: "x", Target: "local_llm"}, {ID: "a", Condition: "y", Target: "local_llm"}}
		}, "duplicate router rule id"},
		{"rule target", func(c *Config) { c.Router.Rules = []RuleConfig{{ID: "a", Condition: "x"}} }, "condition and target"},
		{"rule confidence", func(c *Config) {
			c.Router.Rules = []RuleConfig{{ID: "a", Condition: "x", Target: "local_llm", Confidence: 2}}
		}, "confidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
	assert.NoError(t, Default().Validate())
}
