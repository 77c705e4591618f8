package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/omniagent/core"
)

// MatchAll is the rule condition matching every message.
const MatchAll = "*"

// Rule is a prioritized routing rule. A rule matches when Condition is
// MatchAll or a case-insensitive substring of the message.
type Rule struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Condition   string           `json:"condition" yaml:"condition"`
	Target      core.RouteTarget `json:"target" yaml:"target"`
	Confidence  float64          `json:"confidence" yaml:"confidence"`
	Priority    int              `json:"priority" yaml:"priority"`
	Enabled     bool             `json:"enabled" yaml:"enabled"`
}

func (r Rule) matches(lowered string) bool {
	if r.Condition == MatchAll {
		return true
	}
	return r.Condition != "" && strings.Contains(lowered, strings.ToLower(r.Condition))
}

// RuleRouter selects the enabled matching rule with the highest priority
// (ties broken by rule id) and delegates to a fallback router when nothing
// matches. For a fixed rule set it is deterministic.
type RuleRouter struct {
	mu       sync.RWMutex
	rules    map[string]Rule
	fallback Router
	learning []LearningRecord
}

// MaxLearningRecords bounds the feedback history; the oldest record is dropped first.
const MaxLearningRecords = 1000

// LearningRecord is caller feedback on a routing decision. Feedback is in [-1,1].
type LearningRecord struct {
	ID         string    `json:"id"`
	DecisionID string    `json:"decision_id"`
	Context    string    `json:"context"`
	Outcome    string    `json:"outcome"`
	Feedback   float64   `json:"feedback"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRuleRouter creates an empty rule router. A nil fallback defaults to the
// keyword router.
func NewRuleRouter(fallback Router) *RuleRouter {
	if fallback == nil {
		fallback = NewKeywordRouter()
	}
	return &RuleRouter{rules: make(map[string]Rule), fallback: fallback}
}

// Register adds or replaces a rule keyed by its id.
func (r *RuleRouter) Register(rule Rule) error {
	if rule.ID == "" {
		return errors.New("rule id must not be empty")
	}
	if rule.Confidence < 0 || rule.Confidence > 1 {
		return fmt.Errorf("rule %s: confidence %v outside [0,1]", rule.ID, rule.Confidence)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = rule
	return nil
}

// Remove deletes a rule; unknown ids are ignored.
func (r *RuleRouter) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, id)
}

// Rules returns all registered rules ordered by descending priority.
func (r *RuleRouter) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sortRules(out)
	return out
}

// Decide implements Router.
func (r *RuleRouter) Decide(text string) core.RouteDecision {
	lowered := strings.ToLower(text)

	r.mu.RLock()
	var best *Rule
	for id := range r.rules {
		rule := r.rules[id]
		if !rule.Enabled || !rule.matches(lowered) {
			continue
		}
		if best == nil || rule.Priority > best.Priority || (rule.Priority == best.Priority && rule.ID < best.ID) {
			best = &rule
		}
	}
	r.mu.RUnlock()

	if best == nil {
		return r.fallback.Decide(text)
	}

	return core.RouteDecision{
		Target:     best.Target,
		Confidence: best.Confidence,
		Reasoning:  fmt.Sprintf("matched rule '%s': %s", best.Name, best.Description),
	}
}

// RecordLearning stores feedback for a decision (typically a task id). The
// records are kept for inspection only and never change routing.
func (r *RuleRouter) RecordLearning(decisionID, context, outcome string, feedback float64) LearningRecord {
	rec := LearningRecord{
		ID:         uuid.NewString(),
		DecisionID: decisionID,
		Context:    context,
		Outcome:    outcome,
		Feedback:   max(-1, min(1, feedback)),
		Timestamp:  time.Now(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.learning) == MaxLearningRecords {
		r.learning = append(r.learning[:0], r.learning[1:]...)
	}
	r.learning = append(r.learning, rec)
	return rec
}

// LearningRecords returns a copy of the recorded feedback, oldest first.
func (r *RuleRouter) LearningRecords() []LearningRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LearningRecord, len(r.learning))
	copy(out, r.learning)
	return out
}

// ParseTarget parses the RouteTarget.String form: "local_llm",
// "remote_agent(name)" or "remote_tool(name)".
func ParseTarget(s string) (core.RouteTarget, error) {
	s = strings.TrimSpace(s)
	if s == core.TargetLocalLLM.String() {
		return core.LocalLLM(), nil
	}
	for _, kind := range []core.TargetKind{core.TargetRemoteAgent, core.TargetRemoteTool} {
		prefix := kind.String() + "("
		if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, ")") {
			name := strings.TrimSpace(s[len(prefix) : len(s)-1])
			if name == "" {
				break
			}
			return core.RouteTarget{Kind: kind, Name: name}, nil
		}
	}
	return core.RouteTarget{}, fmt.Errorf("invalid route target %q", s)
}

func sortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}
