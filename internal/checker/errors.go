package checker

import (
	"fmt"
	"strings"

	"covenant/internal/ast"
)

// ErrorKind enumerates every way a program can fail checking.
type ErrorKind int

const (
	IncorrectArgumentCount ErrorKind = iota
	TypeError
	UndefinedVariable
	UnknownFunction
	NoSuchTupleField
	ExpectedTuple
	BadTupleFieldName
	BadTupleConstruction
	TupleExpectsPairs
	BadLetSyntax
	NameAlreadyUsed
	VariadicNeedsOneArgument
	ListTypesMustMatch
	ConstructedListTooLarge
	UnknownListConstructionFailure
	ExpectedListType
	DefaultTypesMustMatch
	NoSuchMap
	BadMapName
	BadMapTypeDefinition
	BadFunctionDefinition
	UnknownTypeName
	InvalidTypeDescription
	ValueTooLarge
	NoSuchPublicFunction
	NoSuchContract
	ContractCallExpectName
	NoSuchBlockInfoProperty
	GetBlockInfoExpectPropertyName
	ExpectedOptionalType
	ExpectedResponseType
	WriteAttemptedInReadOnly
	CheckerImplementationFailure
)

var kindNames = [...]string{
	IncorrectArgumentCount:         "IncorrectArgumentCount",
	TypeError:                      "TypeError",
	UndefinedVariable:              "UndefinedVariable",
	UnknownFunction:                "UnknownFunction",
	NoSuchTupleField:               "NoSuchTupleField",
	ExpectedTuple:                  "ExpectedTuple",
	BadTupleFieldName:              "BadTupleFieldName",
	BadTupleConstruction:           "BadTupleConstruction",
	TupleExpectsPairs:              "TupleExpectsPairs",
	BadLetSyntax:                   "BadLetSyntax",
	NameAlreadyUsed:                "NameAlreadyUsed",
	VariadicNeedsOneArgument:       "VariadicNeedsOneArgument",
	ListTypesMustMatch:             "ListTypesMustMatch",
	ConstructedListTooLarge:        "ConstructedListTooLarge",
	UnknownListConstructionFailure: "UnknownListConstructionFailure",
	ExpectedListType:               "ExpectedListType",
	DefaultTypesMustMatch:          "DefaultTypesMustMatch",
	NoSuchMap:                      "NoSuchMap",
	BadMapName:                     "BadMapName",
	BadMapTypeDefinition:           "BadMapTypeDefinition",
	BadFunctionDefinition:          "BadFunctionDefinition",
	UnknownTypeName:                "UnknownTypeName",
	InvalidTypeDescription:         "InvalidTypeDescription",
	ValueTooLarge:                  "ValueTooLarge",
	NoSuchPublicFunction:           "NoSuchPublicFunction",
	NoSuchContract:                 "NoSuchContract",
	ContractCallExpectName:         "ContractCallExpectName",
	NoSuchBlockInfoProperty:        "NoSuchBlockInfoProperty",
	GetBlockInfoExpectPropertyName: "GetBlockInfoExpectPropertyName",
	ExpectedOptionalType:           "ExpectedOptionalType",
	ExpectedResponseType:           "ExpectedResponseType",
	WriteAttemptedInReadOnly:       "WriteAttemptedInReadOnly",
	CheckerImplementationFailure:   "CheckerImplementationFailure",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CheckError is a structured checking failure. Args carry the kind's
// payload: for TypeError the expected and actual types, for
// IncorrectArgumentCount the expected and actual counts, and so on. Expr is
// the innermost expression being checked when the failure occurred.
type CheckError struct {
	Kind ErrorKind
	Args []interface{}
	Expr *ast.Expr
}

func newError(kind ErrorKind, args ...interface{}) *CheckError {
	return &CheckError{Kind: kind, Args: args}
}

func (e *CheckError) Error() string {
	msg := e.message()
	if e.Expr != nil {
		return fmt.Sprintf("%s: %s", e.Expr.Pos, msg)
	}
	return msg
}

func (e *CheckError) arg(i int) interface{} {
	if i < len(e.Args) {
		return e.Args[i]
	}
	return "?"
}

func (e *CheckError) message() string {
	switch e.Kind {
	case IncorrectArgumentCount:
		return fmt.Sprintf("expected %v arguments, got %v", e.arg(0), e.arg(1))
	case TypeError:
		return fmt.Sprintf("type mismatch: expected %v, got %v", e.arg(0), e.arg(1))
	case UndefinedVariable:
		return fmt.Sprintf("undefined variable %v", e.arg(0))
	case UnknownFunction:
		return fmt.Sprintf("unknown function %v", e.arg(0))
	case NoSuchTupleField:
		return fmt.Sprintf("tuple has no field %v", e.arg(0))
	case ExpectedTuple:
		return fmt.Sprintf("expected a tuple, got %v", e.arg(0))
	case DefaultTypesMustMatch:
		return fmt.Sprintf("branch types do not match: %v and %v", e.arg(0), e.arg(1))
	case NoSuchMap:
		return fmt.Sprintf("no such map %v", e.arg(0))
	case NameAlreadyUsed:
		return fmt.Sprintf("name %v is already used", e.arg(0))
	case NoSuchPublicFunction:
		return fmt.Sprintf("contract %v has no public function %v", e.arg(0), e.arg(1))
	case NoSuchContract:
		return fmt.Sprintf("no such contract %v", e.arg(0))
	case NoSuchBlockInfoProperty:
		return fmt.Sprintf("no such block info property %v", e.arg(0))
	case UnknownTypeName:
		return fmt.Sprintf("unknown type %v", e.arg(0))
	case ExpectedListType, ExpectedOptionalType, ExpectedResponseType:
		return fmt.Sprintf("%s: got %v", e.Kind, e.arg(0))
	}
	if len(e.Args) == 0 {
		return e.Kind.String()
	}
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = fmt.Sprint(a)
	}
	return e.Kind.String() + "(" + strings.Join(parts, ", ") + ")"
}
