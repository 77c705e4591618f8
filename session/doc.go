// Package session houses the conversation buffer and the per-session buffer
// store. A Buffer is a bounded, order preserving history of buffered messages
// with strict FIFO eviction; a Store hands out one Buffer per session id.
//
// Both types are safe for concurrent use: reads never block each other and a
// write excludes all other access for its duration.
package session
