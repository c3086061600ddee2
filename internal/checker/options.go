package checker

import (
	"covenant/internal/ast"
	"covenant/internal/scope"
	"covenant/internal/types"
)

func checkOkay(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	t, err := c.TypeCheck(args[0], frame)
	if err != nil {
		return nil, err
	}
	return types.NewResponse(t, types.Any), nil
}

func checkError(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	t, err := c.TypeCheck(args[0], frame)
	if err != nil {
		return nil, err
	}
	return types.NewResponse(types.Any, t), nil
}

// (default-to default optional)
func checkDefaultTo(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	opt, ok := argTypes[1].(*types.Optional)
	if !ok {
		return nil, newError(ExpectedOptionalType, argTypes[1])
	}
	t, err := types.MostAdmissive(argTypes[0], opt.Inner)
	if err != nil {
		return nil, mismatch(DefaultTypesMustMatch, err)
	}
	return t, nil
}

// (expects! input thrown) unwraps a some or an ok, or aborts with thrown.
func checkExpects(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	switch t := argTypes[0].(type) {
	case *types.Optional:
		return t.Inner, nil
	case *types.Response:
		return t.Ok, nil
	}
	return nil, newError(ExpectedOptionalType, argTypes[0])
}

// (expects-err! input thrown) unwraps an err, or aborts with thrown.
func checkExpectsErr(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	r, ok := argTypes[0].(*types.Response)
	if !ok {
		return nil, newError(ExpectedResponseType, argTypes[0])
	}
	return r.Err, nil
}

func checkIsOkay(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	t, err := c.TypeCheck(args[0], frame)
	if err != nil {
		return nil, err
	}
	if _, ok := t.(*types.Response); !ok {
		return nil, newError(ExpectedResponseType, t)
	}
	return types.Bool, nil
}

func checkIsNone(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	t, err := c.TypeCheck(args[0], frame)
	if err != nil {
		return nil, err
	}
	if _, ok := t.(*types.Optional); !ok {
		return nil, newError(ExpectedOptionalType, t)
	}
	return types.Bool, nil
}
