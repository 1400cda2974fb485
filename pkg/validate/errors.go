// Package validate decides whether candidate chart and table data may be accepted.
//
// Every check is side-effect free and returns either a typed value or an *Error.
// Error messages are user-facing and are shown to end users without translation.
package validate

import (
	"errors"
	"fmt"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindShape       Kind = "shape"       // wrong root type, missing field, wrong field type
	KindRange       Kind = "range"       // counts or sizes outside the configured bounds
	KindConsistency Kind = "consistency" // dataset/labels or row/headers length mismatch
	KindParse       Kind = "parse"       // text that is not JSON
)

// Error is a validation failure. Error() returns the user-facing message verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsKind reports whether err is a validation error of the given kind.
func IsKind(err error, kind Kind) bool {
	var verr *Error
	return errors.As(err, &verr) && verr.Kind == kind
}

func shapeErr(format string, args ...any) *Error {
	return &Error{Kind: KindShape, Message: fmt.Sprintf(format, args...)}
}

func rangeErr(format string, args ...any) *Error {
	return &Error{Kind: KindRange, Message: fmt.Sprintf(format, args...)}
}

func consistencyErr(format string, args ...any) *Error {
	return &Error{Kind: KindConsistency, Message: fmt.Sprintf(format, args...)}
}

// Result is the discriminated {valid, data} / {valid, error} shape handed to callers
// that branch on a flag instead of an error value.
type Result[T any] struct {
	Valid bool   `json:"valid"`
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewResult converts a (value, error) pair into a Result.
func NewResult[T any](v T, err error) Result[T] {
	if err != nil {
		return Result[T]{Valid: false, Error: err.Error()}
	}
	return Result[T]{Valid: true, Data: &v}
}
