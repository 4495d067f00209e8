package zclload

// Logger defines the interface for logging operations.
// Implementations should be safe for concurrent use.
type Logger interface {
	// Verbose logs detailed diagnostic information (only shown in verbose mode)
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations
	Info(format string, args ...interface{})

	// Warn logs recoverable problems: skipped references, corrected types
	Warn(format string, args ...interface{})

	// Error logs error messages
	Error(format string, args ...interface{})
}
