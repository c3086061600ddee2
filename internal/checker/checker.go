// Package checker statically types programs before they run. Every special
// form and native call is verified against the type model, the type of
// every sub-expression is memoized, and failures are returned as
// *CheckError values. Checking has no side effects on map data.
package checker

import (
	"errors"
	"fmt"

	"covenant/internal/ast"
	"covenant/internal/contract"
	"covenant/internal/natives"
	"covenant/internal/scope"
	"covenant/internal/types"
	"covenant/internal/value"
)

// ContractDB resolves previously deployed contracts for contract-call! and
// fetch-contract-entry.
type ContractDB interface {
	Contract(name string) (*contract.Contract, bool)
}

// Checker checks the expressions of one contract. Definitions accepted by
// Check are added to the contract, so later expressions can use them.
type Checker struct {
	db       ContractDB
	contract *contract.Contract
	typeMap  *types.TypeMap
	scopes   *scope.Arena[types.TypeSignature]

	// readOnly is set while checking a define-read-only body; writes
	// records whether the current body mutates a map.
	readOnly bool
	writes   bool
}

// New returns a checker that adds definitions to c.
func New(db ContractDB, c *contract.Contract) *Checker {
	return &Checker{
		db:       db,
		contract: c,
		typeMap:  c.Types,
		scopes:   scope.New[types.TypeSignature](),
	}
}

// Contract returns the contract being built.
func (c *Checker) Contract() *contract.Contract { return c.contract }

// CheckContract checks every top-level form of prog in order and returns
// the resulting contract. The first failure aborts checking.
func CheckContract(db ContractDB, name string, prog *ast.Program) (*contract.Contract, error) {
	if err := contract.ValidName(name); err != nil {
		return nil, err
	}
	if db != nil {
		if _, exists := db.Contract(name); exists {
			return nil, fmt.Errorf("%w: %s", contract.ErrContractExists, name)
		}
	}
	ch := New(db, contract.New(name))
	for _, expr := range prog.Exprs {
		if _, err := ch.Check(expr); err != nil {
			return nil, err
		}
	}
	return ch.contract, nil
}

// Check checks one top-level form. Definitions are registered in the
// contract and type as Void; any other expression is checked in a fresh
// scope and appended to the contract's top-level expressions.
func (c *Checker) Check(expr *ast.Expr) (types.TypeSignature, error) {
	if head, args, ok := expr.Head(); ok {
		switch head {
		case "define-map":
			return types.Void, c.annotate(expr, c.defineMap(expr, args))
		case "define":
			return types.Void, c.annotate(expr, c.defineFunction(expr, args, contract.Private))
		case "define-public":
			return types.Void, c.annotate(expr, c.defineFunction(expr, args, contract.Public))
		case "define-read-only":
			return types.Void, c.annotate(expr, c.defineFunction(expr, args, contract.ReadOnly))
		}
	}

	c.readOnly, c.writes = false, false
	frame := c.scopes.Push(scope.Root)
	defer c.scopes.Pop(frame)

	t, err := c.TypeCheck(expr, frame)
	if err != nil {
		return nil, err
	}
	c.contract.TopLevel = append(c.contract.TopLevel, expr)
	return t, nil
}

// TypeCheck computes the type of expr in the typing context frame and
// records it in the type memo.
func (c *Checker) TypeCheck(expr *ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	t, err := c.inferType(expr, frame)
	if err != nil {
		return nil, c.annotate(expr, err)
	}
	if err := c.typeMap.Set(expr, t); err != nil {
		return nil, c.annotate(expr, newError(CheckerImplementationFailure, err))
	}
	return t, nil
}

// TypeCheckAll checks args left to right. The first failure aborts.
func (c *Checker) TypeCheckAll(args []*ast.Expr, frame scope.FrameID) ([]types.TypeSignature, error) {
	out := make([]types.TypeSignature, len(args))
	for i, arg := range args {
		t, err := c.TypeCheck(arg, frame)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// annotate attaches expr to a CheckError that has no expression yet.
func (c *Checker) annotate(expr *ast.Expr, err error) error {
	if err == nil {
		return nil
	}
	var ce *CheckError
	if errors.As(err, &ce) && ce.Expr == nil {
		ce.Expr = expr
	}
	return err
}

// markName records expr as a name token rather than a value.
func (c *Checker) markName(expr *ast.Expr) error {
	if err := c.typeMap.Set(expr, types.NoType); err != nil {
		return newError(CheckerImplementationFailure, err)
	}
	return nil
}

// markWrite records a map mutation in the current body.
func (c *Checker) markWrite() error {
	c.writes = true
	if c.readOnly {
		return newError(WriteAttemptedInReadOnly)
	}
	return nil
}

func (c *Checker) inferType(expr *ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	switch expr.Kind {
	case ast.IntLiteral:
		if !value.InRange(expr.Int) {
			return nil, newError(ValueTooLarge, expr.Int.String())
		}
		return types.Int, nil
	case ast.BoolLiteral:
		return types.Bool, nil
	case ast.NullLiteral:
		return types.NewOptional(types.Any), nil
	case ast.BufferLiteral:
		bt, err := types.NewBuffer(len(expr.Buffer))
		if err != nil {
			return nil, newError(ValueTooLarge, len(expr.Buffer))
		}
		return bt, nil
	case ast.Atom:
		return c.lookupVariable(expr.Name, frame)
	case ast.List:
		return c.checkApplication(expr, frame)
	}
	return nil, newError(CheckerImplementationFailure, fmt.Sprintf("unexpected expression kind %s", expr.Kind))
}

func (c *Checker) lookupVariable(name string, frame scope.FrameID) (types.TypeSignature, error) {
	if t, ok := c.scopes.Lookup(frame, name); ok {
		return t, nil
	}
	if name == natives.TxSender {
		return natives.PrincipalType, nil
	}
	return nil, newError(UndefinedVariable, name)
}

func (c *Checker) checkApplication(expr *ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	name, args, ok := expr.Head()
	if !ok {
		return nil, newError(UnknownFunction, expr.String())
	}
	if err := c.markName(expr.List[0]); err != nil {
		return nil, err
	}

	if meta, ok := natives.Lookup(name); ok {
		if meta.IsSpecial() {
			return specialRules[meta.ID](c, args, frame)
		}
		return c.checkFunctionType(meta.Type, args, frame)
	}

	if fn, ok := c.contract.Function(name); ok {
		ret, err := c.checkFunctionType(fn.Type, args, frame)
		if err != nil {
			return nil, err
		}
		if fn.Writes {
			if err := c.markWrite(); err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	return nil, newError(UnknownFunction, name)
}

func (c *Checker) checkFunctionType(ft types.FunctionType, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	if err := CheckArgs(ft, argTypes); err != nil {
		return nil, err
	}
	return ft.ReturnType(), nil
}

// CheckArgs validates argument types against a function signature.
func CheckArgs(ft types.FunctionType, argTypes []types.TypeSignature) error {
	switch f := ft.(type) {
	case *types.FixedFunction:
		if len(argTypes) != len(f.Args) {
			return newError(IncorrectArgumentCount, len(f.Args), len(argTypes))
		}
		for i, arg := range f.Args {
			if !types.Admits(arg.Type, argTypes[i]) {
				return newError(TypeError, arg.Type, argTypes[i])
			}
		}
		return nil
	case *types.VariadicFunction:
		if len(argTypes) == 0 {
			return newError(VariadicNeedsOneArgument)
		}
		for _, t := range argTypes {
			if !types.Admits(f.ArgType, t) {
				return newError(TypeError, f.ArgType, t)
			}
		}
		return nil
	}
	return newError(CheckerImplementationFailure, fmt.Sprintf("unknown function type %T", ft))
}

// bindName adds name to frame, rejecting reserved names and duplicates in
// the same frame.
func (c *Checker) bindName(frame scope.FrameID, name string, t types.TypeSignature) error {
	if natives.IsReservedName(name) {
		return newError(NameAlreadyUsed, name)
	}
	if err := c.scopes.Bind(frame, name, t); err != nil {
		var dup *scope.AlreadyBoundError
		if errors.As(err, &dup) {
			return newError(NameAlreadyUsed, name)
		}
		return newError(CheckerImplementationFailure, err)
	}
	return nil
}

func expectArgs(args []*ast.Expr, n int) error {
	if len(args) != n {
		return newError(IncorrectArgumentCount, n, len(args))
	}
	return nil
}
