// Package router decides where an inbound message is handled. Routers are
// small strategies behind the Router interface so a future classifier can
// replace the keyword placeholder without touching task or workflow contracts.
package router

import (
	"strings"

	"github.com/hupe1980/omniagent/core"
)

// Router maps message text to a routing decision. Implementations must be
// deterministic and safe for concurrent use.
type Router interface {
	Decide(text string) core.RouteDecision
}

// Func adapts a plain function to the Router interface.
type Func func(text string) core.RouteDecision

// Decide implements Router.
func (f Func) Decide(text string) core.RouteDecision { return f(text) }

const (
	// InfoAgent is the peer agent receiving information queries.
	InfoAgent = "info_agent"
	// FileProcessor is the tool receiving file and compute requests.
	FileProcessor = "file_processor"
)

// Reasoning strings attached to keyword decisions.
const (
	ReasonInfoKeyword = "matched information query keyword"
	ReasonToolKeyword = "matched tool processing keyword"
	ReasonDefault     = "default route to local LLM"
)

var (
	// DefaultInfoKeywords routes weather/time class queries to InfoAgent.
	DefaultInfoKeywords = []string{"weather", "time", "天气", "时间"}
	// DefaultToolKeywords routes file/compute class requests to FileProcessor.
	DefaultToolKeywords = []string{"file", "compute", "calculate", "文件", "计算"}
)

// KeywordRouter is the reference routing policy. Rules are evaluated in order
// and the first match wins:
//  1. any information keyword → RemoteAgent(info_agent), confidence 0.7
//  2. any tool keyword        → RemoteTool(file_processor), confidence 0.8
//  3. otherwise               → LocalLLM, confidence 0.9
//
// Matching is case-insensitive. ASCII keywords must match whole words, so
// "sometimes" does not contain "time"; other keywords match as substrings.
// The router holds no mutable state after construction.
type KeywordRouter struct {
	infoKeywords []string
	toolKeywords []string
}

// KeywordOptions overrides the keyword sets of a KeywordRouter.
type KeywordOptions struct {
	InfoKeywords []string
	ToolKeywords []string
}

// NewKeywordRouter creates a keyword router using the default keyword sets
// unless overridden.
func NewKeywordRouter(optFns ...func(o *KeywordOptions)) *KeywordRouter {
	opts := KeywordOptions{
		InfoKeywords: DefaultInfoKeywords,
		ToolKeywords: DefaultToolKeywords,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &KeywordRouter{
		infoKeywords: lowerAll(opts.InfoKeywords),
		toolKeywords: lowerAll(opts.ToolKeywords),
	}
}

// Decide implements Router.
func (r *KeywordRouter) Decide(text string) core.RouteDecision {
	lowered := strings.ToLower(text)

	if containsAny(lowered, r.infoKeywords) {
		return core.RouteDecision{
			Target:     core.RemoteAgent(InfoAgent),
			Confidence: 0.7,
			Reasoning:  ReasonInfoKeyword,
		}
	}

	if containsAny(lowered, r.toolKeywords) {
		return core.RouteDecision{
			Target:     core.RemoteTool(FileProcessor),
			Confidence: 0.8,
			Reasoning:  ReasonToolKeyword,
		}
	}

	return core.RouteDecision{
		Target:     core.LocalLLM(),
		Confidence: 0.9,
		Reasoning:  ReasonDefault,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && containsKeyword(text, kw) {
			return true
		}
	}
	return false
}

func containsKeyword(text, kw string) bool {
	if !isASCII(kw) {
		return strings.Contains(text, kw)
	}
	for i := 0; i <= len(text)-len(kw); {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(kw)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		i = start + 1
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// isWordByte reports ASCII letters, digits and underscore. Bytes of multi-byte
// runes are never word bytes, so CJK text adjacent to a keyword is a boundary.
func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
