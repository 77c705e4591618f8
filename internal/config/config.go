// Package config loads runtime configuration from an optional YAML file and
// OMNI_AGENT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. OMNI_AGENT_TOOLS_MAX_CONCURRENT.
const EnvPrefix = "OMNI_AGENT"

// Config holds the complete runtime configuration.
type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Buffer        BufferConfig        `mapstructure:"buffer"`
	Tools         ToolsConfig         `mapstructure:"tools"`
	Orchestration OrchestrationConfig `mapstructure:"orchestration"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Router        RouterConfig        `mapstructure:"router"`
}

// RouterConfig holds prioritized routing rules. With no rules the keyword
// router is used directly.
type RouterConfig struct {
	Rules []RuleConfig `mapstructure:"rules"`
}

// RuleConfig is one routing rule. Target uses the route target string form,
// e.g. "local_llm" or "remote_tool(word_count)".
type RuleConfig struct {
	ID          string  `mapstructure:"id"`
	Name        string  `mapstructure:"name"`
	Description string  `mapstructure:"description"`
	Condition   string  `mapstructure:"condition"`
	Target      string  `mapstructure:"target"`
	Confidence  float64 `mapstructure:"confidence"`
	Priority    int     `mapstructure:"priority"`
	Disabled    bool    `mapstructure:"disabled"`
}

// LogConfig selects the logging backend.
type LogConfig struct {
	Level   string `mapstructure:"level"`   // debug, info, warn, error
	Format  string `mapstructure:"format"`  // json, text
	Backend string `mapstructure:"backend"` // slog, zerolog, none
}

// BufferConfig sizes conversation buffers.
type BufferConfig struct {
	Size int `mapstructure:"size"`
}

// ToolsConfig configures the tool pipeline.
type ToolsConfig struct {
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	FailFast      bool          `mapstructure:"fail_fast"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// OrchestrationConfig configures the orchestration engine.
type OrchestrationConfig struct {
	TaskCapacity int `mapstructure:"task_capacity"`
}

// LLMConfig selects the local model backend.
type LLMConfig struct {
	Provider     string  `mapstructure:"provider"` // mock, openai, anthropic
	Model        string  `mapstructure:"model"`
	APIKey       string  `mapstructure:"api_key"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int64   `mapstructure:"max_tokens"`
	Instructions string  `mapstructure:"instructions"`
}

// CacheConfig selects the tool result cache backend.
type CacheConfig struct {
	Backend string      `mapstructure:"backend"` // memory, redis
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text", Backend: "slog"},
		Buffer: BufferConfig{
			Size: 10,
		},
		Tools: ToolsConfig{
			MaxConcurrent: 5,
			CacheTTL:      5 * time.Minute,
			PurgeInterval: time.Minute,
		},
		Orchestration: OrchestrationConfig{TaskCapacity: 10000},
		LLM: LLMConfig{
			Provider:     "mock",
			Temperature:  0.7,
			MaxTokens:    4096,
			Instructions: "You are a helpful assistant.",
		},
		Cache: CacheConfig{
			Backend: "memory",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "omniagent:tool:"},
		},
	}
}

// Load reads configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("omniagent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/omniagent")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Buffer.Size <= 0 {
		return fmt.Errorf("buffer.size must be positive, got %d", c.Buffer.Size)
	}
	if c.Tools.MaxConcurrent <= 0 {
		return fmt.Errorf("tools.max_concurrent must be positive, got %d", c.Tools.MaxConcurrent)
	}
	if c.Tools.CacheTTL < 0 {
		return fmt.Errorf("tools.cache_ttl must not be negative")
	}
	if c.Orchestration.TaskCapacity <= 0 {
		return fmt.Errorf("orchestration.task_capacity must be positive, got %d", c.Orchestration.TaskCapacity)
	}
	switch c.LLM.Provider {
	case "mock", "openai", "anthropic":
	default:
		return fmt.Errorf("invalid llm provider: %s (must be mock, openai, or anthropic)", c.LLM.Provider)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s (must be memory or redis)", c.Cache.Backend)
	}
	seen := make(map[string]bool, len(c.Router.Rules))
	for i, r := range c.Router.Rules {
		if r.ID == "" {
			return fmt.Errorf("router.rules[%d].id is required", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate router rule id: %s", r.ID)
		}
		seen[r.ID] = true
		if r.Condition == "" || r.Target == "" {
			return fmt.Errorf("router rule %s: condition and target are required", r.ID)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return fmt.Errorf("router rule %s: confidence must be within [0,1]", r.ID)
		}
	}
	switch c.Log.Backend {
	case "slog", "zerolog", "none":
	default:
		return fmt.Errorf("invalid log backend: %s (must be slog, zerolog, or none)", c.Log.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.backend", d.Log.Backend)
	v.SetDefault("buffer.size", d.Buffer.Size)
	v.SetDefault("tools.max_concurrent", d.Tools.MaxConcurrent)
	v.SetDefault("tools.cache_ttl", d.Tools.CacheTTL)
	v.SetDefault("tools.fail_fast", d.Tools.FailFast)
	v.SetDefault("tools.purge_interval", d.Tools.PurgeInterval)
	v.SetDefault("orchestration.task_capacity", d.Orchestration.TaskCapacity)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.instructions", d.LLM.Instructions)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("cache.redis.prefix", d.Cache.Redis.Prefix)
}
