package vm

import (
	"covenant/internal/ast"
	"covenant/internal/scope"
	"covenant/internal/value"
)

func evalOkay(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 1); err != nil {
		return value.Value{}, err
	}
	v, err := vm.eval(args[0], sc)
	if err != nil {
		return value.Value{}, err
	}
	return value.Okay(v), nil
}

func evalError(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 1); err != nil {
		return value.Value{}, err
	}
	v, err := vm.eval(args[0], sc)
	if err != nil {
		return value.Value{}, err
	}
	return value.Err(v), nil
}

// (default-to default optional); both arguments are evaluated.
func evalDefaultTo(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	vals, err := vm.evalAll(args, sc)
	if err != nil {
		return value.Value{}, err
	}
	opt := vals[1]
	if opt.Kind != value.KindOptional {
		return value.Value{}, newError(TypeError, "default-to expects an optional, got %s", opt.Kind)
	}
	if opt.Optional.IsSome {
		return opt.Optional.Value, nil
	}
	return vals[0], nil
}

func thrown(v value.Value) error {
	return &Error{Kind: ExpectsFailed, Thrown: &v}
}

// (expects! input thrown) unwraps a some or an ok. Anything else aborts the
// evaluation with thrown.
func evalExpects(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	vals, err := vm.evalAll(args, sc)
	if err != nil {
		return value.Value{}, err
	}
	input := vals[0]
	switch input.Kind {
	case value.KindOptional:
		if input.Optional.IsSome {
			return input.Optional.Value, nil
		}
	case value.KindResponse:
		if input.Response.IsOk {
			return input.Response.Value, nil
		}
	default:
		return value.Value{}, newError(TypeError, "expects! needs an optional or response, got %s", input.Kind)
	}
	return value.Value{}, thrown(vals[1])
}

// (expects-err! input thrown) unwraps an err.
func evalExpectsErr(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	vals, err := vm.evalAll(args, sc)
	if err != nil {
		return value.Value{}, err
	}
	input := vals[0]
	if input.Kind != value.KindResponse {
		return value.Value{}, newError(TypeError, "expects-err! needs a response, got %s", input.Kind)
	}
	if !input.Response.IsOk {
		return input.Response.Value, nil
	}
	return value.Value{}, thrown(vals[1])
}

func evalIsOkay(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 1); err != nil {
		return value.Value{}, err
	}
	v, err := vm.eval(args[0], sc)
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind != value.KindResponse {
		return value.Value{}, newError(TypeError, "is-ok? needs a response, got %s", v.Kind)
	}
	return value.Bool(v.Response.IsOk), nil
}

func evalIsNone(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 1); err != nil {
		return value.Value{}, err
	}
	v, err := vm.eval(args[0], sc)
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind != value.KindOptional {
		return value.Value{}, newError(TypeError, "is-none? needs an optional, got %s", v.Kind)
	}
	return value.Bool(!v.Optional.IsSome), nil
}
