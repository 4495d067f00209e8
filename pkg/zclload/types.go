package zclload

import (
	"errors"
	"fmt"
	"time"
)

// StoreConfig selects and configures the relational store a load writes to.
type StoreConfig struct {
	// Driver is DriverSQLite or DriverPostgres.
	Driver string

	// DSN is the sqlite file path or the postgres connection string.
	// For postgres it may be empty when Connection carries cloud auth settings.
	DSN string

	// Connection holds parsed postgres parameters for token-based auth.
	Connection *ConnectionConfig
}

// Validate checks if the StoreConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *StoreConfig) Validate() error {
	var errs []error

	switch c.Driver {
	case DriverSQLite:
		if c.DSN == "" {
			errs = append(errs, fmt.Errorf("sqlite store requires a database path: %w", ErrInvalidConfig))
		}
	case DriverPostgres:
		if c.DSN == "" && c.Connection == nil {
			errs = append(errs, fmt.Errorf("postgres store requires a DSN or connection settings: %w", ErrInvalidConfig))
		}
		if c.Connection != nil && !c.Connection.AuthMethod.IsValid() {
			errs = append(errs, fmt.Errorf("auth method %v: %w", c.Connection.AuthMethod, ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q: %w", c.Driver, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LoadOptions tunes a load operation.
type LoadOptions struct {
	// Workers bounds concurrent work inside one batch. Zero means DefaultWorkers.
	Workers int

	// Strings is the length defaulting policy for string attributes.
	Strings StringPolicy

	// Timeout bounds a whole load operation. Zero disables it.
	Timeout time.Duration

	// IgnoreFormatting hashes normalized content, so edits that only touch
	// comments or whitespace leave a package Unchanged.
	IgnoreFormatting bool
}

// Validate checks LoadOptions for impossible values.
func (o *LoadOptions) Validate() error {
	var errs []error
	if o.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers cannot be negative: %w", ErrInvalidConfig))
	}
	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}
	if err := o.Strings.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StringPolicy holds the max-length defaults applied to string attributes
// that omit an explicit length.
type StringPolicy struct {
	ConstrainedCategory string
	ConstrainedLong     int
	RelaxedLong         int
	Short               int
}

// DefaultStringPolicy returns the built-in string length policy.
func DefaultStringPolicy() StringPolicy {
	return StringPolicy{
		ConstrainedCategory: DefaultZigbeeCategory,
		ConstrainedLong:     DefaultZigbeeLongStringLength,
		RelaxedLong:         DefaultLongStringLength,
		Short:               DefaultShortStringLength,
	}
}

// Validate rejects non-positive lengths.
func (p StringPolicy) Validate() error {
	if p.ConstrainedLong <= 0 || p.RelaxedLong <= 0 || p.Short <= 0 {
		return fmt.Errorf("string length defaults must be positive: %w", ErrInvalidConfig)
	}
	return nil
}

// ConnectionConfig represents parsed postgres connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Params are passed through as libpq query parameters
	// (application_name, connect_timeout, ...).
	Params map[string]string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// AWS IAM parameters (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance in project:region:instance form
	GoogleInstance string

	// Azure Entra ID parameters. If all three are provided, Service Principal
	// authentication is used, otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password or DSN
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a configuration string to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra":
		return AuthMethodAzureEntraID, nil
	}
	return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
}

// PackageKind classifies a registered package.
type PackageKind string

const (
	KindJSONManifest       PackageKind = "zcl-json"
	KindPropertiesManifest PackageKind = "zcl-properties"
	KindXMLLibrary         PackageKind = "zcl-xml-library"
	KindXML                PackageKind = "zcl-xml"
	KindXMLStandalone      PackageKind = "zcl-xml-standalone"
	KindSchema             PackageKind = "zcl-schema"
	KindValidation         PackageKind = "zcl-validation"
)

// PackageInfo describes one registered package.
type PackageInfo struct {
	ID          int64
	Path        string
	Hash        string
	Kind        PackageKind
	ParentID    *int64
	Version     string
	Category    string
	Description string
}

// QualificationStatus is the content registry's verdict for one file.
type QualificationStatus int

const (
	// Fresh means no prior record existed; a package row was inserted.
	Fresh QualificationStatus = iota
	// Unchanged means the stored hash matches; the file must not be parsed.
	Unchanged
	// Changed means the stored hash was replaced; the file must be reparsed.
	Changed
)

func (s QualificationStatus) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return fmt.Sprintf("QualificationStatus(%d)", int(s))
	}
}

// NeedsParse reports whether a file with this status must be normalized and loaded.
func (s QualificationStatus) NeedsParse() bool {
	return s != Unchanged
}

// SessionScope names the packages visible to an individual file load.
// When PackageIDs is empty the packages attached to SessionID are used.
type SessionScope struct {
	SessionID  string
	PackageIDs []int64
}

// FileOutcome records what happened to one file during a load.
type FileOutcome struct {
	Path      string
	PackageID int64
	Status    QualificationStatus
	Forced    bool
}

// LoadResult is returned by a successful top-level load.
type LoadResult struct {
	PackageID int64
	SessionID string
	Status    QualificationStatus
	Files     []FileOutcome
	Orphans   int
	Duration  time.Duration
}

// Parsed counts the files that were normalized and inserted.
func (r *LoadResult) Parsed() int {
	n := 0
	for _, f := range r.Files {
		if f.Status.NeedsParse() || f.Forced {
			n++
		}
	}
	return n
}

// IndividualResult is the outcome of adding one file to a session.
type IndividualResult struct {
	Succeeded bool
	PackageID int64
	Err       error
}
