// Package logging provides a minimal logging interface and adapters for MemoryMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that backends and adapters use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - MeshLogger, a contextual slog logger with component / session helpers
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	backend, err := client.New("user-1", apiKey, func(o *client.Options) { o.Logger = logger })
package logging
