// Package orchestration turns routing decisions into tracked tasks and
// dispatches them to the local LLM service or to a remote Dispatcher.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hupe1980/omniagent/core"
	"github.com/hupe1980/omniagent/llm"
	"github.com/hupe1980/omniagent/logging"
	"github.com/hupe1980/omniagent/metrics"
	"github.com/hupe1980/omniagent/router"
	"github.com/hupe1980/omniagent/session"
)

// DefaultTaskCapacity bounds the in-memory task table.
const DefaultTaskCapacity = 10000

// Options configure an Engine.
type Options struct {
	Router     router.Router // defaults to router.NewKeywordRouter()
	LLM        llm.Service   // defaults to llm.NewMockService()
	Dispatcher Dispatcher    // defaults to PlaceholderDispatcher
	// Buffer, when set, records the conversation of Orchestrate calls.
	Buffer *session.Buffer
	// Sessions provides per-session buffers for OrchestrateSession.
	Sessions *session.Store
	// TaskCapacity bounds retained tasks; the oldest task is evicted first.
	TaskCapacity int
	Logger       logging.Logger
	Metrics      *metrics.OrchestrationMetrics
}

// Engine owns the task table and runs one task per Orchestrate call.
type Engine struct {
	opts    Options
	logger  logging.Logger
	metrics *metrics.OrchestrationMetrics

	mu    sync.RWMutex // guards Task fields
	tasks *lru.Cache[string, *Task]
	seq   atomic.Uint64
}

// NewEngine creates an orchestration engine.
func NewEngine(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{TaskCapacity: DefaultTaskCapacity}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Router == nil {
		opts.Router = router.NewKeywordRouter()
	}
	if opts.LLM == nil {
		opts.LLM = llm.NewMockService()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = PlaceholderDispatcher{}
	}
	if opts.TaskCapacity <= 0 {
		opts.TaskCapacity = DefaultTaskCapacity
	}

	tasks, err := lru.New[string, *Task](opts.TaskCapacity)
	if err != nil {
		return nil, fmt.Errorf("create task table: %w", err)
	}

	return &Engine{
		opts:    opts,
		logger:  logging.OrNoOp(opts.Logger),
		metrics: opts.Metrics,
		tasks:   tasks,
	}, nil
}

// Orchestrate routes message, runs the resulting task and returns its result.
// Failures leave the task in TaskFailed and return a *TaskError.
func (e *Engine) Orchestrate(ctx context.Context, message string) (string, error) {
	return e.run(ctx, "", e.opts.Buffer, message)
}

// OrchestrateSession is Orchestrate recording into the buffer of sessionID.
// It requires Options.Sessions.
func (e *Engine) OrchestrateSession(ctx context.Context, sessionID, message string) (string, error) {
	if e.opts.Sessions == nil {
		return "", errors.New("orchestration: no session store configured")
	}
	return e.run(ctx, sessionID, e.opts.Sessions.Get(sessionID), message)
}

func (e *Engine) run(ctx context.Context, sessionID string, buf *session.Buffer, message string) (string, error) {
	start := time.Now()
	decision := e.opts.Router.Decide(message)

	var history []string
	if buf != nil {
		history = buf.Contents()
		buf.Add(core.NewBufferedMessage(core.UserMessage, message, 1))
	}

	task := e.newTask(sessionID, message, decision)
	logger := e.logger
	logger.Info("orchestration.task.created",
		"task_id", task.ID,
		"target", decision.Target.String(),
		"confidence", decision.Confidence,
		"reasoning", decision.Reasoning,
	)

	e.transition(task, TaskRunning, "", "")
	result, err := e.dispatch(ctx, decision.Target, message, history)
	dur := time.Since(start)

	if err != nil {
		e.transition(task, TaskFailed, "", err.Error())
		if buf != nil {
			buf.Add(core.NewBufferedMessage(core.SystemMessage, fmt.Sprintf("task %s failed: %v", task.ID, err), 0.5))
		}
		e.metrics.ObserveTask(decision.Target.Kind.String(), TaskFailed.String(), dur)
		logger.Error("orchestration.task.failed", "task_id", task.ID, "target", decision.Target.String(), "error", err.Error(), "duration", dur)
		return "", &TaskError{TaskID: task.ID, Target: decision.Target, Err: err}
	}

	e.transition(task, TaskCompleted, result, "")
	if buf != nil {
		buf.Add(core.NewBufferedMessage(responseType(decision.Target), result, 0.8))
	}
	e.metrics.ObserveTask(decision.Target.Kind.String(), TaskCompleted.String(), dur)
	logger.Info("orchestration.task.completed", "task_id", task.ID, "target", decision.Target.String(), "duration", dur)
	return result, nil
}

// dispatch calls the collaborator for target, converting panics to errors.
func (e *Engine) dispatch(ctx context.Context, target core.RouteTarget, message string, history []string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collaborator panicked: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if target.Kind == core.TargetLocalLLM {
		return e.opts.LLM.Process(ctx, message, history)
	}
	return e.opts.Dispatcher.Dispatch(ctx, target, message)
}

func (e *Engine) newTask(sessionID, message string, decision core.RouteDecision) *Task {
	now := time.Now()
	seq := e.seq.Add(1)
	t := &Task{
		ID:          fmt.Sprintf("task-%d-%s", seq, uuid.NewString()[:8]),
		Name:        "task: " + truncate(message, 64),
		Description: decision.Reasoning,
		SessionID:   sessionID,
		Input:       message,
		Target:      decision.Target,
		Confidence:  decision.Confidence,
		Status:      TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		seq:         seq,
	}
	e.mu.Lock()
	e.tasks.Add(t.ID, t)
	e.mu.Unlock()
	return t
}

func (e *Engine) transition(t *Task, status TaskStatus, result, errText string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t.Status = status
	t.Result = result
	t.Error = errText
	t.UpdatedAt = time.Now()
}

// Task returns a copy of the task with the given id.
func (e *Engine) Task(id string) (Task, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tasks.Peek(id)
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.clone(), nil
}

// TaskStatus returns the status of the task with the given id.
func (e *Engine) TaskStatus(id string) (TaskStatus, error) {
	t, err := e.Task(id)
	if err != nil {
		return TaskPending, err
	}
	return t.Status, nil
}

// Tasks returns copies of all retained tasks in creation order.
func (e *Engine) Tasks() []Task {
	e.mu.RLock()
	out := make([]Task, 0, e.tasks.Len())
	for _, t := range e.tasks.Values() {
		out = append(out, t.clone())
	}
	e.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len returns the number of retained tasks.
func (e *Engine) Len() int { return e.tasks.Len() }

func responseType(t core.RouteTarget) core.MessageType {
	if t.Kind == core.TargetRemoteTool {
		return core.ToolResponse
	}
	return core.LLMResponse
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
