package core

import "fmt"

// TargetKind enumerates the backends a routing decision can resolve to.
type TargetKind int

const (
	// TargetLocalLLM forwards the message to the local LLM service.
	TargetLocalLLM TargetKind = iota
	// TargetRemoteAgent delegates the message to a named peer agent.
	TargetRemoteAgent
	// TargetRemoteTool delegates the message to a named callable tool.
	TargetRemoteTool
)

// String returns the string representation of the target kind.
func (k TargetKind) String() string {
	switch k {
	case TargetLocalLLM:
		return "local_llm"
	case TargetRemoteAgent:
		return "remote_agent"
	case TargetRemoteTool:
		return "remote_tool"
	default:
		return "unknown"
	}
}

// RouteTarget identifies where a message should be handled. Name is empty for
// TargetLocalLLM and carries the collaborator name for remote targets.
type RouteTarget struct {
	Kind TargetKind `json:"kind"`
	Name string     `json:"name,omitempty"`
}

// LocalLLM returns the local model target.
func LocalLLM() RouteTarget { return RouteTarget{Kind: TargetLocalLLM} }

// RemoteAgent returns a target naming a peer agent.
func RemoteAgent(name string) RouteTarget { return RouteTarget{Kind: TargetRemoteAgent, Name: name} }

// RemoteTool returns a target naming a callable tool.
func RemoteTool(name string) RouteTarget { return RouteTarget{Kind: TargetRemoteTool, Name: name} }

// String renders the target as kind or kind(name).
func (t RouteTarget) String() string {
	if t.Name == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Name)
}

// RouteDecision is the immutable outcome of routing one message. Confidence is
// in [0,1]; Reasoning is a fixed human-readable rationale.
type RouteDecision struct {
	Target     RouteTarget `json:"target"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}
