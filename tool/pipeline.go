package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/omniagent/logging"
	"github.com/hupe1980/omniagent/metrics"
)

// AdminPermission is required by tools whose name contains "admin".
const AdminPermission = "admin"

// Options configure a Pipeline.
type Options struct {
	// MaxConcurrent bounds simultaneous executions (default 5).
	MaxConcurrent int
	// CacheTTL is the default result lifetime; zero or negative disables caching.
	CacheTTL time.Duration
	// FailFast rejects executions with ConcurrencyLimitExceeded instead of
	// waiting for a slot.
	FailFast bool
	// Cache stores results (defaults to a MemoryCache).
	Cache Cache
	// RequiredPermission maps a tool name to the permission it needs, or ""
	// when unrestricted (defaults to AdminPermission for names containing "admin").
	RequiredPermission func(toolName string) string
	Logger             logging.Logger
	Metrics            *metrics.ToolMetrics
}

// DefaultOptions returns the baseline pipeline configuration.
func DefaultOptions() Options {
	return Options{
		MaxConcurrent:      5,
		CacheTTL:           5 * time.Minute,
		RequiredPermission: AdminRestricted,
	}
}

// AdminRestricted requires AdminPermission for tool names containing "admin".
func AdminRestricted(toolName string) string {
	if strings.Contains(strings.ToLower(toolName), "admin") {
		return AdminPermission
	}
	return ""
}

// Pipeline executes registered tools through the eight phase lifecycle under a
// bounded concurrency gate with a TTL result cache.
type Pipeline struct {
	registry *Registry
	sem      *semaphore.Weighted
	inUse    atomic.Int64
	opts     Options
	cache    Cache
	logger   logging.Logger
	metrics  *metrics.ToolMetrics
}

// NewPipeline creates a pipeline with an empty tool catalog.
func NewPipeline(optFns ...func(o *Options)) *Pipeline {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.RequiredPermission == nil {
		opts.RequiredPermission = AdminRestricted
	}
	return &Pipeline{
		registry: NewRegistry(),
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		opts:     opts,
		cache:    opts.Cache,
		logger:   logging.OrNoOp(opts.Logger),
		metrics:  opts.Metrics,
	}
}

// Register adds a tool to the catalog.
func (p *Pipeline) Register(t Tool) error { return p.registry.Register(t) }

// Unregister removes a tool from the catalog.
func (p *Pipeline) Unregister(name string) { p.registry.Unregister(name) }

// Tool returns the named tool.
func (p *Pipeline) Tool(name string) (Tool, bool) { return p.registry.Get(name) }

// Tools lists registered tools sorted by name.
func (p *Pipeline) Tools() []Tool { return p.registry.List() }

// MaxConcurrent returns the size of the concurrency gate.
func (p *Pipeline) MaxConcurrent() int { return p.opts.MaxConcurrent }

// AvailableSlots returns the number of free execution slots.
func (p *Pipeline) AvailableSlots() int {
	return p.opts.MaxConcurrent - int(p.inUse.Load())
}

// ExecuteToolJSON decodes raw parameters and calls ExecuteTool. Parameters
// that are not a JSON object fail validation.
func (p *Pipeline) ExecuteToolJSON(ctx context.Context, name string, raw json.RawMessage, execCtx ExecutionContext) (*ExecutionResult, error) {
	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil || params == nil {
		return p.ExecuteTool(ctx, name, nil, execCtx)
	}
	return p.ExecuteTool(ctx, name, params, execCtx)
}

// ExecuteTool runs the named tool. On failure it returns both the failed
// ExecutionResult and a *ToolError. ctx bounds slot acquisition and is passed to
// the tool; execCtx.Timeout additionally bounds the invoke phase.
func (p *Pipeline) ExecuteTool(ctx context.Context, name string, params map[string]any, execCtx ExecutionContext) (*ExecutionResult, error) {
	start := time.Now()
	res := &ExecutionResult{
		ID:       uuid.NewString(),
		ToolName: name,
		Status:   StatusRunning,
	}
	logger := p.logger

	fail := func(phase Phase, code, msg string, cause error) (*ExecutionResult, error) {
		terr := &ToolError{Tool: name, Code: code, Message: msg, Phase: phase, Err: cause}
		var inner *ToolError
		if errors.As(cause, &inner) {
			terr.Code, terr.Message, terr.Details = inner.Code, inner.Message, inner.Details
			if inner.Code == "" {
				terr.Code = code
			}
		}
		res.Status = StatusFailed
		res.Phase = phase
		res.Error = terr.Error()
		res.ExecutionTime = time.Since(start)
		p.metrics.ObserveExecution(p.metricLabel(name), StatusFailed.String(), res.ExecutionTime)
		logger.Warn("tool.phase.failed", "execution_id", res.ID, "tool", name, "phase", phase.String(), "code", terr.Code)
		logging.ToolCall(logger, name, res.ExecutionTime, false, terr)
		return res, terr
	}

	// 1. Validation
	res.Phase = PhaseValidation
	if strings.TrimSpace(name) == "" {
		return fail(PhaseValidation, ValidationFailed, "tool name is required", nil)
	}
	if params == nil {
		return fail(PhaseValidation, ValidationFailed, "parameters must be a JSON object", nil)
	}
	key, err := CacheKey(name, params)
	if err != nil {
		return fail(PhaseValidation, ValidationFailed, err.Error(), err)
	}

	// 2. PermissionCheck
	res.Phase = PhasePermissionCheck
	if perm := p.opts.RequiredPermission(name); perm != "" && !execCtx.HasPermission(perm) {
		return fail(PhasePermissionCheck, PermissionDenied, fmt.Sprintf("permission %q required", perm), nil)
	}

	// 3. ConcurrencyAcquire
	res.Phase = PhaseConcurrencyAcquire
	release, err := p.acquire(ctx)
	if err != nil {
		return fail(PhaseConcurrencyAcquire, ConcurrencyLimitExceeded, err.Error(), err)
	}
	// 8. Cleanup runs on every exit path from here on.
	defer release()

	// 4. CacheLookup
	res.Phase = PhaseCacheLookup
	t, registered := p.registry.Get(name)
	ttl := p.opts.CacheTTL
	if execCtx.CacheTTL > 0 {
		ttl = execCtx.CacheTTL
	}
	useCache := registered && ttl > 0 && isCacheable(t)
	if useCache {
		cached, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("tool.cache.lookup_failed", "tool", name, "error", err.Error())
		}
		if ok {
			p.metrics.CacheHit(name)
			return p.complete(res, start, cached, true), nil
		}
		p.metrics.CacheMiss(name)
	}

	// 5. Invoke
	res.Phase = PhaseInvoke
	if !registered {
		return fail(PhaseInvoke, ToolNotFound, fmt.Sprintf("tool %q is not registered", name), nil)
	}
	invokeCtx := ctx
	if execCtx.Timeout > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(ctx, execCtx.Timeout)
		defer cancel()
	}
	logger.Debug("tool.invoke.start", "execution_id", res.ID, "tool", name, "user_id", execCtx.UserID, "session_id", execCtx.SessionID)
	value, err := p.invoke(invokeCtx, t, params)
	if err == nil && invokeCtx.Err() != nil {
		err = invokeCtx.Err()
	}
	if err != nil {
		return fail(PhaseInvoke, ExecutionFailed, err.Error(), err)
	}

	// 6. ResultValidation
	res.Phase = PhaseResultValidation
	raw, err := json.Marshal(value)
	if err != nil {
		return fail(PhaseResultValidation, ValidationFailed, fmt.Sprintf("result is not serializable: %v", err), err)
	}
	if isEmptyResult(raw) {
		return fail(PhaseResultValidation, ValidationFailed, "tool returned an empty result", nil)
	}

	// 7. CacheStore
	res.Phase = PhaseCacheStore
	if useCache {
		if err := p.cache.Set(ctx, key, raw, ttl); err != nil {
			logger.Warn("tool.cache.store_failed", "tool", name, "error", err.Error())
		}
	}

	return p.complete(res, start, raw, false), nil
}

func (p *Pipeline) complete(res *ExecutionResult, start time.Time, raw json.RawMessage, cached bool) *ExecutionResult {
	res.Phase = PhaseCleanup
	res.Status = StatusCompleted
	res.Result = raw
	res.Cached = cached
	res.ExecutionTime = time.Since(start)
	p.metrics.ObserveExecution(res.ToolName, StatusCompleted.String(), res.ExecutionTime)
	logging.ToolCall(p.logger, res.ToolName, res.ExecutionTime, cached, nil)
	return res
}

var errNoSlot = errors.New("no execution slot available")

// acquire takes one slot and returns its idempotent release function.
func (p *Pipeline) acquire(ctx context.Context) (func(), error) {
	if p.opts.FailFast {
		if !p.sem.TryAcquire(1) {
			return nil, errNoSlot
		}
	} else if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for execution slot: %w", err)
	}
	p.inUse.Add(1)
	p.metrics.SlotAcquired()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.inUse.Add(-1)
			p.sem.Release(1)
			p.metrics.SlotReleased()
		})
	}, nil
}

// invoke calls the tool converting panics into errors.
func (p *Pipeline) invoke(ctx context.Context, t Tool, params map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
			p.logger.Error("tool.invoke.panic", "tool", t.Name(), "recover", r)
		}
	}()
	return t.Execute(ctx, params)
}

// PurgeExpired removes expired cache entries.
func (p *Pipeline) PurgeExpired(ctx context.Context) (int, error) {
	n, err := p.cache.PurgeExpired(ctx)
	if err != nil {
		return n, err
	}
	if n > 0 {
		p.logger.Debug("tool.cache.purged", "entries", n)
	}
	return n, nil
}

// StartJanitor calls PurgeExpired every interval until ctx is done. The
// returned channel is closed when the janitor exits.
func (p *Pipeline) StartJanitor(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if interval <= 0 {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := p.PurgeExpired(ctx); err != nil {
					p.logger.Warn("tool.cache.purge_failed", "error", err.Error())
				}
			}
		}
	}()
	return done
}

// UnregisteredToolLabel is the metrics label used for names not in the catalog.
const UnregisteredToolLabel = "unregistered"

// metricLabel keeps metric series bounded by the catalog size.
func (p *Pipeline) metricLabel(name string) string {
	if _, ok := p.registry.Get(name); ok {
		return name
	}
	return UnregisteredToolLabel
}

func isCacheable(t Tool) bool {
	if c, ok := t.(Cacheable); ok {
		return c.Cacheable()
	}
	return true
}

func isEmptyResult(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""`
}
