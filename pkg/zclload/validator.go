package zclload

import "fmt"

// ValidationIssue is one problem reported by a Validator.
type ValidationIssue struct {
	Line    int
	Message string
}

func (i ValidationIssue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s", i.Line, i.Message)
	}
	return i.Message
}

// Validator checks raw file content before an individual file is loaded.
// A returned error means the validator itself failed.
type Validator interface {
	Validate(content []byte) ([]ValidationIssue, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(content []byte) ([]ValidationIssue, error)

// Validate calls f(content).
func (f ValidatorFunc) Validate(content []byte) ([]ValidationIssue, error) {
	return f(content)
}

// NoopValidator accepts everything.
var NoopValidator Validator = ValidatorFunc(func([]byte) ([]ValidationIssue, error) {
	return nil, nil
})
