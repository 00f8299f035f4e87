package valve

import (
	"errors"
	"fmt"
)

// ErrorKind tells whether a calculation failed on its input or on a
// property lookup.
type ErrorKind string

const (
	KindInput    ErrorKind = "input"
	KindProperty ErrorKind = "property"
)

// CalculationError is the only error type returned by the network.
// Section is -1 when the error does not belong to a section.
type CalculationError struct {
	Kind    ErrorKind
	Section int
	Msg     string
	Err     error
}

func (e *CalculationError) Error() string {
	msg := e.Msg
	if e.Section >= 0 {
		msg = fmt.Sprintf("section %d: %s", e.Section+1, msg)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CalculationError) Unwrap() error { return e.Err }

func inputError(format string, args ...any) *CalculationError {
	return &CalculationError{Kind: KindInput, Section: -1, Msg: fmt.Sprintf(format, args...)}
}

func propertyError(section int, msg string, err error) *CalculationError {
	return &CalculationError{Kind: KindProperty, Section: section, Msg: msg, Err: err}
}

// IsCalculationError reports whether err is, or wraps, a CalculationError.
func IsCalculationError(err error) bool {
	var ce *CalculationError
	return errors.As(err, &ce)
}
