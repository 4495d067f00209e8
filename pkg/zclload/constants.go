package zclload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to the store
	ExitParseError      = 12 // Unreadable, unknown or rejected metadata file
	ExitStoreError      = 13 // Statement or transaction failure
	ExitSessionError    = 14 // Unknown session id
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultWorkers bounds the fan-out inside a single batch.
	DefaultWorkers = 4

	// DefaultDriver is the store used when nothing else is configured.
	DefaultDriver = DriverSQLite

	// DefaultSQLitePath is the database file used by the default driver.
	DefaultSQLitePath = "zclload.db"

	// DefaultZigbeeCategory is the package category that selects the
	// network-constrained long string length.
	DefaultZigbeeCategory = "zigbee"

	// DefaultLongStringLength applies to long strings outside the zigbee category.
	DefaultLongStringLength = 1024

	// DefaultZigbeeLongStringLength applies to long strings in zigbee packages.
	DefaultZigbeeLongStringLength = 253

	// DefaultShortStringLength applies to short strings without an explicit length.
	DefaultShortStringLength = 254
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
