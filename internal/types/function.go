package types

import (
	"strings"
)

// FunctionArg is one named, typed parameter.
type FunctionArg struct {
	Name string
	Type TypeSignature
}

// FunctionType is the signature of a native or user-defined function:
// either *FixedFunction or *VariadicFunction.
type FunctionType interface {
	ReturnType() TypeSignature
	String() string
}

// FixedFunction takes exactly len(Args) positional arguments.
type FixedFunction struct {
	Args    []FunctionArg
	Returns TypeSignature
}

func (f *FixedFunction) ReturnType() TypeSignature { return f.Returns }

func (f *FixedFunction) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.Name + " " + a.Type.String()
	}
	return "(fn (" + strings.Join(parts, ") (") + ") " + f.Returns.String() + ")"
}

// VariadicFunction takes one or more arguments of ArgType.
type VariadicFunction struct {
	ArgType TypeSignature
	Returns TypeSignature
}

func (f *VariadicFunction) ReturnType() TypeSignature { return f.Returns }

func (f *VariadicFunction) String() string {
	return "(fn " + f.ArgType.String() + "... " + f.Returns.String() + ")"
}

// Fixed is a shorthand for building a FixedFunction.
func Fixed(returns TypeSignature, args ...FunctionArg) *FixedFunction {
	return &FixedFunction{Args: args, Returns: returns}
}

// Variadic is a shorthand for building a VariadicFunction.
func Variadic(argType, returns TypeSignature) *VariadicFunction {
	return &VariadicFunction{ArgType: argType, Returns: returns}
}
