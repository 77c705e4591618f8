// Package omniagent wires the runtime core into a single Runtime: a routing
// orchestration engine over per-session conversation buffers, a sequential
// workflow engine and the eight phase tool execution pipeline. Most
// applications interact with this package by:
//  1. Loading a config.Config (or using config.Default())
//  2. Creating a Runtime via New(), optionally overriding collaborators
//  3. Calling Orchestrate, ExecuteWorkflow or ExecuteTool
//
// All defaults run in-process with a mock LLM and an in-memory result cache.
package omniagent

import (
	"context"
	"fmt"
	"os"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/omniagent/internal/config"
	"github.com/hupe1980/omniagent/llm"
	"github.com/hupe1980/omniagent/logging"
	"github.com/hupe1980/omniagent/metrics"
	"github.com/hupe1980/omniagent/model/anthropic"
	"github.com/hupe1980/omniagent/model/openai"
	"github.com/hupe1980/omniagent/orchestration"
	"github.com/hupe1980/omniagent/router"
	"github.com/hupe1980/omniagent/session"
	"github.com/hupe1980/omniagent/tool"
	"github.com/hupe1980/omniagent/workflow"
)

// Options overrides collaborators built from the config.
type Options struct {
	// Logger replaces the logger derived from Config.Log.
	Logger logging.Logger
	// Registerer receives the runtime's collectors (default: a private registry).
	Registerer prometheus.Registerer
	// LLM replaces the service derived from Config.LLM.
	LLM llm.Service
	// Router replaces the keyword router.
	Router router.Router
	// Tools are registered in addition to the builtins.
	Tools []tool.Tool
	// DisableBuiltins skips registering tool.Builtins().
	DisableBuiltins bool
}

// Runtime aggregates the engines and services of one agent process.
type Runtime struct {
	cfg       *config.Config
	logger    logging.Logger
	registry  *prometheus.Registry
	tools     *tool.Pipeline
	sessions  *session.Store
	orch      *orchestration.Engine
	workflows *workflow.Engine
	redis     redis.UniversalClient

	mu     sync.Mutex
	cancel context.CancelFunc
	done   <-chan struct{}
}

// New builds a Runtime from cfg. A nil cfg means config.Default(). ctx bounds
// connection setup of external backends only.
func New(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Runtime{cfg: cfg}

	if opts.Logger != nil {
		r.logger = opts.Logger
	} else {
		l, err := newLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		r.logger = l
	}

	reg := opts.Registerer
	if reg == nil {
		r.registry = prometheus.NewRegistry()
		reg = r.registry
	}

	cache, err := r.newCache(ctx)
	if err != nil {
		return nil, err
	}

	r.tools = tool.NewPipeline(func(o *tool.Options) {
		o.MaxConcurrent = cfg.Tools.MaxConcurrent
		o.CacheTTL = cfg.Tools.CacheTTL
		o.FailFast = cfg.Tools.FailFast
		o.Cache = cache
		o.Logger = r.logger
		o.Metrics = metrics.NewToolMetrics(reg)
	})
	var tools []tool.Tool
	if !opts.DisableBuiltins {
		tools = append(tools, tool.Builtins()...)
	}
	tools = append(tools, opts.Tools...)
	for _, t := range tools {
		if err := r.tools.Register(t); err != nil {
			r.closeBackends()
			return nil, fmt.Errorf("register tool: %w", err)
		}
	}

	rtr := opts.Router
	if rtr == nil && len(cfg.Router.Rules) > 0 {
		rr, err := newRuleRouter(cfg.Router)
		if err != nil {
			r.closeBackends()
			return nil, err
		}
		rtr = rr
	}

	svc := opts.LLM
	if svc == nil {
		svc = newLLMService(cfg.LLM, r.logger)
	}

	r.sessions = session.NewStore(cfg.Buffer.Size)
	orchMetrics := metrics.NewOrchestrationMetrics(reg)
	r.orch, err = orchestration.NewEngine(func(o *orchestration.Options) {
		o.Router = rtr
		o.LLM = svc
		o.Dispatcher = orchestration.NewToolDispatcher(r.tools)
		o.Buffer = session.NewBuffer(cfg.Buffer.Size)
		o.Sessions = r.sessions
		o.TaskCapacity = cfg.Orchestration.TaskCapacity
		o.Logger = r.logger
		o.Metrics = orchMetrics
	})
	if err != nil {
		r.closeBackends()
		return nil, err
	}

	r.workflows = workflow.NewEngine(r.orch, func(o *workflow.Options) {
		o.Logger = r.logger
		o.Metrics = orchMetrics
	})

	return r, nil
}

func newRuleRouter(cfg config.RouterConfig) (*router.RuleRouter, error) {
	rr := router.NewRuleRouter(nil)
	for _, rc := range cfg.Rules {
		target, err := router.ParseTarget(rc.Target)
		if err != nil {
			return nil, fmt.Errorf("router rule %s: %w", rc.ID, err)
		}
		if err := rr.Register(router.Rule{
			ID:          rc.ID,
			Name:        rc.Name,
			Description: rc.Description,
			Condition:   rc.Condition,
			Target:      target,
			Confidence:  rc.Confidence,
			Priority:    rc.Priority,
			Enabled:     !rc.Disabled,
		}); err != nil {
			return nil, err
		}
	}
	return rr, nil
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "none":
		return logging.NoOpLogger{}, nil
	case "zerolog":
		return logging.NewZerologLogger(os.Stderr, level, cfg.Format), nil
	default:
		return logging.NewLogger(&logging.LoggerConfig{
			Level:     level,
			Format:    cfg.Format,
			Output:    os.Stderr,
			Component: "omniagent",
		}), nil
	}
}

func (r *Runtime) newCache(ctx context.Context) (tool.Cache, error) {
	if r.cfg.Cache.Backend != "redis" {
		return tool.NewMemoryCache(), nil
	}
	rc := r.cfg.Cache.Redis
	client, err := tool.NewRedisClient(ctx, tool.RedisConfig{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	if err != nil {
		return nil, err
	}
	r.redis = client
	return tool.NewRedisCache(client, func(o *tool.RedisCacheOptions) {
		if rc.Prefix != "" {
			o.Prefix = rc.Prefix
		}
	}), nil
}

func newLLMService(cfg config.LLMConfig, logger logging.Logger) llm.Service {
	withOpts := func(o *llm.Options) {
		if cfg.Instructions != "" {
			o.Instructions = cfg.Instructions
		}
		o.Logger = logger
	}
	switch cfg.Provider {
	case "openai":
		return llm.NewModelService(openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
			o.APIKey = cfg.APIKey
		}), withOpts)
	case "anthropic":
		return llm.NewModelService(anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = sdk.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
			o.APIKey = cfg.APIKey
		}), withOpts)
	default:
		return llm.NewMockService()
	}
}

// Orchestrate routes and runs message against the runtime's default buffer.
func (r *Runtime) Orchestrate(ctx context.Context, message string) (string, error) {
	return r.orch.Orchestrate(ctx, message)
}

// OrchestrateSession runs message recording into the buffer of sessionID.
func (r *Runtime) OrchestrateSession(ctx context.Context, sessionID, message string) (string, error) {
	return r.orch.OrchestrateSession(ctx, sessionID, message)
}

// RegisterWorkflow stores wf for ExecuteWorkflow.
func (r *Runtime) RegisterWorkflow(wf workflow.Workflow) error { return r.workflows.Register(wf) }

// ExecuteWorkflow runs a registered workflow.
func (r *Runtime) ExecuteWorkflow(ctx context.Context, id, input string) (string, error) {
	return r.workflows.Execute(ctx, id, input)
}

// ExecuteTool runs a tool through the pipeline.
func (r *Runtime) ExecuteTool(ctx context.Context, name string, params map[string]any, execCtx tool.ExecutionContext) (*tool.ExecutionResult, error) {
	return r.tools.ExecuteTool(ctx, name, params, execCtx)
}

// Tools returns the tool pipeline.
func (r *Runtime) Tools() *tool.Pipeline { return r.tools }

// Orchestrator returns the orchestration engine.
func (r *Runtime) Orchestrator() *orchestration.Engine { return r.orch }

// Workflows returns the workflow engine.
func (r *Runtime) Workflows() *workflow.Engine { return r.workflows }

// Sessions returns the session store.
func (r *Runtime) Sessions() *session.Store { return r.sessions }

// Logger returns the runtime logger.
func (r *Runtime) Logger() logging.Logger { return r.logger }

// Gatherer returns the private metrics registry, or nil when Options.Registerer
// was supplied.
func (r *Runtime) Gatherer() prometheus.Gatherer {
	if r.registry == nil {
		return nil
	}
	return r.registry
}

// Start launches background maintenance (cache purging). Calling Start on a
// started Runtime is a no-op.
func (r *Runtime) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = r.tools.StartJanitor(ctx, r.cfg.Tools.PurgeInterval)
	r.logger.Info("runtime.started", "purge_interval", r.cfg.Tools.PurgeInterval)
}

// Close stops background maintenance and releases external connections.
func (r *Runtime) Close() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return r.closeBackends()
}

func (r *Runtime) closeBackends() error {
	if r.redis == nil {
		return nil
	}
	err := r.redis.Close()
	r.redis = nil
	return err
}
