package checker

import (
	"covenant/internal/ast"
	"covenant/internal/contract"
	"covenant/internal/scope"
	"covenant/internal/types"
)

func (c *Checker) lookupContract(name string) (*contract.Contract, error) {
	if name == c.contract.Name {
		return c.contract, nil
	}
	if c.db != nil {
		if target, ok := c.db.Contract(name); ok {
			return target, nil
		}
	}
	return nil, newError(NoSuchContract, name)
}

// mapSchema resolves the literal map name in expr against owner's schemas.
func (c *Checker) mapSchema(owner *contract.Contract, expr *ast.Expr) (*contract.MapSchema, error) {
	name, ok := expr.MatchAtom()
	if !ok {
		return nil, newError(BadMapName, expr.String())
	}
	if err := c.markName(expr); err != nil {
		return nil, err
	}
	schema, ok := owner.Map(name)
	if !ok {
		return nil, newError(NoSuchMap, name)
	}
	return schema, nil
}

func (c *Checker) checkTupleArg(expected *types.Tuple, expr *ast.Expr, frame scope.FrameID) error {
	t, err := c.TypeCheck(expr, frame)
	if err != nil {
		return err
	}
	return c.annotate(expr, expectType(expected, t))
}

// (fetch-entry map key)
func checkFetchEntry(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	schema, err := c.mapSchema(c.contract, args[0])
	if err != nil {
		return nil, err
	}
	if err := c.checkTupleArg(schema.Key, args[1], frame); err != nil {
		return nil, err
	}
	return types.NewOptional(schema.Value), nil
}

// (fetch-contract-entry contract map key) reads another contract's map.
func checkFetchContractEntry(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 3); err != nil {
		return nil, err
	}
	contractName, ok := args[0].MatchAtom()
	if !ok {
		return nil, newError(ContractCallExpectName)
	}
	if err := c.markName(args[0]); err != nil {
		return nil, err
	}
	owner, err := c.lookupContract(contractName)
	if err != nil {
		return nil, err
	}
	schema, err := c.mapSchema(owner, args[1])
	if err != nil {
		return nil, err
	}
	if err := c.checkTupleArg(schema.Key, args[2], frame); err != nil {
		return nil, err
	}
	return types.NewOptional(schema.Value), nil
}

func (c *Checker) checkWrite(args []*ast.Expr, frame scope.FrameID, withValue bool) error {
	n := 2
	if withValue {
		n = 3
	}
	if err := expectArgs(args, n); err != nil {
		return err
	}
	schema, err := c.mapSchema(c.contract, args[0])
	if err != nil {
		return err
	}
	if err := c.checkTupleArg(schema.Key, args[1], frame); err != nil {
		return err
	}
	if withValue {
		if err := c.checkTupleArg(schema.Value, args[2], frame); err != nil {
			return err
		}
	}
	return c.markWrite()
}

// (set-entry! map key value)
func checkSetEntry(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := c.checkWrite(args, frame, true); err != nil {
		return nil, err
	}
	return types.Void, nil
}

// (insert-entry! map key value)
func checkInsertEntry(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := c.checkWrite(args, frame, true); err != nil {
		return nil, err
	}
	return types.Bool, nil
}

// (delete-entry! map key)
func checkDeleteEntry(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := c.checkWrite(args, frame, false); err != nil {
		return nil, err
	}
	return types.Bool, nil
}
