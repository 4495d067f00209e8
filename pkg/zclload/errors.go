package zclload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := svc.LoadTopLevel(ctx, "zcl.json")
//	if errors.Is(err, zclload.ErrParseFailed) {
//	    // report the offending file
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownDialect indicates a file whose extension or root element
	// does not match any supported metadata dialect.
	ErrUnknownDialect = errors.New("unknown metadata dialect")

	// ErrParseFailed indicates a structurally invalid metadata file.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidManifest indicates a manifest that parsed but references
	// options, clusters or attributes that do not exist.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrValidationFailed indicates the validator plugin rejected a file.
	ErrValidationFailed = errors.New("validation failed")

	// ErrMissingDiscriminator indicates a data type category with no
	// discriminator row among the known packages.
	ErrMissingDiscriminator = errors.New("missing data type discriminator")

	// ErrDuplicateCluster indicates a cluster code already defined by
	// another known package.
	ErrDuplicateCluster = errors.New("duplicate cluster code")

	// ErrSessionNotFound indicates a session id with no attached packages.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStoreFailed indicates a statement or transaction failure in the store.
	ErrStoreFailed = errors.New("store operation failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"accepts ",
	"required flag",
	"invalid argument",
	"unknown command",
	"missing required argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrUnknownDialect),
		errors.Is(err, ErrParseFailed),
		errors.Is(err, ErrInvalidManifest),
		errors.Is(err, ErrValidationFailed):
		return ExitParseError
	case errors.Is(err, ErrSessionNotFound):
		return ExitSessionError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrStoreFailed),
		errors.Is(err, ErrMissingDiscriminator),
		errors.Is(err, ErrDuplicateCluster):
		return ExitStoreError
	}

	errStr := err.Error()
	for _, p := range usageErrorPatterns {
		if strings.HasPrefix(errStr, p) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
