package checker

import (
	"errors"

	"covenant/internal/ast"
	"covenant/internal/natives"
	"covenant/internal/scope"
	"covenant/internal/types"
)

func checkListCons(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	lt, err := types.ParentListType(argTypes)
	if err != nil {
		return nil, listConstructionError(err)
	}
	return lt, nil
}

func listConstructionError(err error) error {
	var te *types.Error
	if !errors.As(err, &te) {
		return newError(UnknownListConstructionFailure, err.Error())
	}
	switch te.Kind {
	case types.BadTypeConstruction:
		return newError(ListTypesMustMatch, te.Msg)
	case types.ListTooLarge, types.ListDimensionTooHigh:
		return newError(ConstructedListTooLarge, te.Msg)
	}
	return newError(UnknownListConstructionFailure, te.Msg)
}

// functionArg resolves the literal function name passed to map, filter and
// fold. User functions of the current contract and simple natives qualify.
func (c *Checker) functionArg(expr *ast.Expr) (types.FunctionType, error) {
	name, ok := expr.MatchAtom()
	if !ok {
		return nil, newError(UnknownFunction, expr.String())
	}
	if err := c.markName(expr); err != nil {
		return nil, err
	}
	if meta, ok := natives.Lookup(name); ok {
		if meta.IsSpecial() {
			return nil, newError(UnknownFunction, name)
		}
		return meta.Type, nil
	}
	fn, ok := c.contract.Function(name)
	if !ok {
		return nil, newError(UnknownFunction, name)
	}
	if fn.Writes {
		if err := c.markWrite(); err != nil {
			return nil, err
		}
	}
	return fn.Type, nil
}

func (c *Checker) listArg(expr *ast.Expr, frame scope.FrameID) (*types.List, error) {
	t, err := c.TypeCheck(expr, frame)
	if err != nil {
		return nil, err
	}
	lt, ok := t.(*types.List)
	if !ok {
		return nil, newError(ExpectedListType, t)
	}
	return lt, nil
}

// (map f list) applies f to every element.
func checkMap(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	ft, err := c.functionArg(args[0])
	if err != nil {
		return nil, err
	}
	lt, err := c.listArg(args[1], frame)
	if err != nil {
		return nil, err
	}
	if err := CheckArgs(ft, []types.TypeSignature{lt.ElementType()}); err != nil {
		return nil, err
	}
	out, err := types.NewList(ft.ReturnType(), lt.MaxLen, 1)
	if err != nil {
		return nil, listConstructionError(err)
	}
	return out, nil
}

// (filter f list) keeps the elements for which f returns true.
func checkFilter(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	ft, err := c.functionArg(args[0])
	if err != nil {
		return nil, err
	}
	lt, err := c.listArg(args[1], frame)
	if err != nil {
		return nil, err
	}
	if err := CheckArgs(ft, []types.TypeSignature{lt.ElementType()}); err != nil {
		return nil, err
	}
	if err := expectType(types.Bool, ft.ReturnType()); err != nil {
		return nil, err
	}
	return lt, nil
}

// (fold f list initial) threads an accumulator through f(element, acc).
func checkFold(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 3); err != nil {
		return nil, err
	}
	ft, err := c.functionArg(args[0])
	if err != nil {
		return nil, err
	}
	lt, err := c.listArg(args[1], frame)
	if err != nil {
		return nil, err
	}
	initial, err := c.TypeCheck(args[2], frame)
	if err != nil {
		return nil, err
	}
	elem := lt.ElementType()
	if err := CheckArgs(ft, []types.TypeSignature{elem, initial}); err != nil {
		return nil, err
	}
	ret := ft.ReturnType()
	if err := CheckArgs(ft, []types.TypeSignature{elem, ret}); err != nil {
		return nil, err
	}
	acc, err := types.MostAdmissive(initial, ret)
	if err != nil {
		return nil, mismatch(TypeError, err)
	}
	return acc, nil
}
