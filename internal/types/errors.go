package types

import "fmt"

// ErrorKind classifies type construction failures.
type ErrorKind int

const (
	BadTypeConstruction ErrorKind = iota
	ListTooLarge
	ListDimensionTooHigh
	ValueTooLarge
	NoSuchTupleField
)

func (k ErrorKind) String() string {
	switch k {
	case BadTypeConstruction:
		return "BadTypeConstruction"
	case ListTooLarge:
		return "ListTooLarge"
	case ListDimensionTooHigh:
		return "ListDimensionTooHigh"
	case ValueTooLarge:
		return "ValueTooLarge"
	case NoSuchTupleField:
		return "NoSuchTupleField"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned when a type cannot be built or inspected.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// MismatchError reports two types that have no common admissive type.
type MismatchError struct {
	A TypeSignature
	B TypeSignature
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("types %s and %s do not unify", typeName(e.A), typeName(e.B))
}
