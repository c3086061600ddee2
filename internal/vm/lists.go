package vm

import (
	"covenant/internal/ast"
	"covenant/internal/scope"
	"covenant/internal/value"
)

func evalListCons(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	vals, err := vm.evalAll(args, sc)
	if err != nil {
		return value.Value{}, err
	}
	l, err := value.List(vals)
	if err != nil {
		return value.Value{}, wrapError(InvalidArguments, err)
	}
	return l, nil
}

// listOperands resolves the function name and evaluates the list argument
// shared by map, filter and fold.
func (vm *VM) listOperands(fnExpr, listExpr *ast.Expr, sc scope.FrameID) (function, value.Value, error) {
	fn, err := vm.resolveFunction(fnExpr)
	if err != nil {
		return nil, value.Value{}, err
	}
	l, err := vm.eval(listExpr, sc)
	if err != nil {
		return nil, value.Value{}, err
	}
	if l.Kind != value.KindList {
		return nil, value.Value{}, newError(TypeError, "expected a list, got %s", l.Kind)
	}
	return fn, l, nil
}

// (map f list)
func evalMap(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	fn, l, err := vm.listOperands(args[0], args[1], sc)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, 0, len(l.List.Items))
	for _, item := range l.List.Items {
		v, err := fn([]value.Value{item})
		if err != nil {
			return value.Value{}, err
		}
		out = append(out, v)
	}
	mapped, err := value.List(out)
	if err != nil {
		return value.Value{}, wrapError(InvalidArguments, err)
	}
	return mapped, nil
}

// (filter f list) keeps the list type of its input.
func evalFilter(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	fn, l, err := vm.listOperands(args[0], args[1], sc)
	if err != nil {
		return value.Value{}, err
	}
	var kept []value.Value
	for _, item := range l.List.Items {
		keep, err := fn([]value.Value{item})
		if err != nil {
			return value.Value{}, err
		}
		if keep.Kind != value.KindBool {
			return value.Value{}, newError(TypeError, "filter function must return bool, got %s", keep.Kind)
		}
		if keep.Bool {
			kept = append(kept, item)
		}
	}
	return value.TypedList(l.List.Type, kept), nil
}

// (fold f list initial) calls (f item acc) for each item in order.
func evalFold(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 3); err != nil {
		return value.Value{}, err
	}
	fn, l, err := vm.listOperands(args[0], args[1], sc)
	if err != nil {
		return value.Value{}, err
	}
	acc, err := vm.eval(args[2], sc)
	if err != nil {
		return value.Value{}, err
	}
	for _, item := range l.List.Items {
		if acc, err = fn([]value.Value{item, acc}); err != nil {
			return value.Value{}, err
		}
	}
	return acc, nil
}
