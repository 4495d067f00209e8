package dialect

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// ParseError is a structural failure in one metadata file.
type ParseError struct {
	Path    string
	Line    int    // 0 if unknown
	Field   string // offending element or key, if known
	Message string
	Hint    string
}

func (e *ParseError) Error() string {
	location := e.Path
	if e.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", e.Path, e.Line)
	}

	msg := fmt.Sprintf("%s: %s", location, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s [%s]: %s", location, e.Field, e.Message)
	}
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return zclload.ErrParseFailed
}

// NewParseError builds a ParseError for a missing or malformed field.
func NewParseError(path, field, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Field: field, Message: fmt.Sprintf(format, args...)}
}

// WrapXMLError converts encoding/xml failures to a ParseError with a line number.
func WrapXMLError(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{
			Path:    path,
			Line:    syntaxErr.Line,
			Message: syntaxErr.Msg,
			Hint:    "Check that all XML tags are properly closed and attributes are quoted.",
		}
	}
	return &ParseError{
		Path:    path,
		Message: err.Error(),
		Hint:    "Verify the file is a ZCL or dotdot XML document.",
	}
}

// WrapJSONError converts encoding/json failures to a ParseError.
func WrapJSONError(err error, path string) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{
			Path:    path,
			Message: fmt.Sprintf("%s (offset %d)", syntaxErr.Error(), syntaxErr.Offset),
			Hint:    "Check for trailing commas and unquoted keys.",
		}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ParseError{
			Path:    path,
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &ParseError{Path: path, Message: err.Error()}
}
