// Package logging provides concrete implementations of the zclload.Logger interface.
//
// Available implementations:
//   - ZapLogger: Structured leveled output backed by go.uber.org/zap
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
