// Package logging provides a minimal logging interface and adapters for omniagent.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the orchestration engine, workflow engine and tool pipeline use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZerologAdapter wrapping github.com/rs/zerolog
//   - RuntimeLogger with contextual helpers and domain specific events
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	rt := omniagent.New(func(o *omniagent.Options) { o.Logger = logger })
//
// Arguments passed after the message are alternating key/value pairs.
package logging
