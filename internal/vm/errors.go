package vm

import (
	"fmt"

	"covenant/internal/value"
)

// ErrorKind classifies a runtime failure.
type ErrorKind int

const (
	Undefined ErrorKind = iota
	TypeError
	InvalidArguments
	ExpectedListPairs
	Arithmetic
	ExpectsFailed
	MaxStackDepthReached
	Store
	InterpreterFailure
)

var kindNames = [...]string{
	Undefined:            "Undefined",
	TypeError:            "TypeError",
	InvalidArguments:     "InvalidArguments",
	ExpectedListPairs:    "ExpectedListPairs",
	Arithmetic:           "Arithmetic",
	ExpectsFailed:        "ExpectsFailed",
	MaxStackDepthReached: "MaxStackDepthReached",
	Store:                "Store",
	InterpreterFailure:   "InterpreterFailure",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a runtime failure. Thrown is set for ExpectsFailed and holds
// the caller-supplied value of the failing expects! or expects-err!.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Thrown *value.Value
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == ExpectsFailed && e.Thrown != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Thrown.String())
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}
