// Package core provides the foundational domain types shared by the omniagent
// runtime components. It defines the core abstractions for:
//
//   - Routing decisions (RouteTarget, RouteDecision) produced by routers and
//     consumed by the orchestration engine
//   - Buffered conversation messages (BufferedMessage, MessageType) recorded by
//     the session buffer for later context assembly
//   - Shared sentinel errors (ErrNotFound)
//
// The package intentionally keeps implementation concerns (routing policy,
// task tracking, tool execution) out of scope, exposing small value types that
// every higher level package can depend on without import cycles.
package core
