package checker

import (
	"covenant/internal/ast"
	"covenant/internal/contract"
	"covenant/internal/natives"
	"covenant/internal/scope"
	"covenant/internal/types"
)

// (define-map name ((key-field type) ...) ((value-field type) ...))
func (c *Checker) defineMap(expr *ast.Expr, args []*ast.Expr) error {
	if err := expectArgs(args, 3); err != nil {
		return err
	}
	name, ok := args[0].MatchAtom()
	if !ok {
		return newError(BadMapName, args[0].String())
	}
	if err := c.checkDefinitionName(name); err != nil {
		return err
	}
	if err := c.markName(args[0]); err != nil {
		return err
	}
	key, err := c.parseFieldList(args[1])
	if err != nil {
		return err
	}
	val, err := c.parseFieldList(args[2])
	if err != nil {
		return err
	}
	if err := c.typeMap.Set(expr, types.Void); err != nil {
		return newError(CheckerImplementationFailure, err)
	}
	if err := c.contract.AddMap(&contract.MapSchema{Name: name, Key: key, Value: val}); err != nil {
		return newError(NameAlreadyUsed, name)
	}
	return nil
}

// parseFieldList reads ((name type) ...) as a tuple type.
func (c *Checker) parseFieldList(expr *ast.Expr) (*types.Tuple, error) {
	items, ok := expr.MatchList()
	if !ok || len(items) == 0 {
		return nil, newError(BadMapTypeDefinition, expr.String())
	}
	if err := c.markName(expr); err != nil {
		return nil, err
	}
	fields := make([]types.Field, 0, len(items))
	for _, item := range items {
		pair, ok := item.MatchList()
		if !ok || len(pair) != 2 {
			return nil, newError(BadMapTypeDefinition, item.String())
		}
		fieldName, ok := pair[0].MatchAtom()
		if !ok {
			return nil, newError(BadMapTypeDefinition, item.String())
		}
		t, err := ParseTypeSpec(pair[1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.Field{Name: fieldName, Type: t})
	}
	tt, err := types.NewTuple(fields)
	if err != nil {
		return nil, newError(BadMapTypeDefinition, err.Error())
	}
	return tt, nil
}

// (define (name (arg type) ...) body), likewise define-public and
// define-read-only.
func (c *Checker) defineFunction(expr *ast.Expr, args []*ast.Expr, visibility contract.Visibility) error {
	if err := expectArgs(args, 2); err != nil {
		return err
	}
	sig, ok := args[0].MatchList()
	if !ok || len(sig) == 0 {
		return newError(BadFunctionDefinition, args[0].String())
	}
	name, ok := sig[0].MatchAtom()
	if !ok {
		return newError(BadFunctionDefinition, args[0].String())
	}
	if err := c.checkDefinitionName(name); err != nil {
		return err
	}
	if err := c.markName(args[0]); err != nil {
		return err
	}
	if err := c.markName(sig[0]); err != nil {
		return err
	}

	frame := c.scopes.Push(scope.Root)
	defer c.scopes.Pop(frame)

	params := make([]types.FunctionArg, 0, len(sig)-1)
	for _, p := range sig[1:] {
		pair, ok := p.MatchList()
		if !ok || len(pair) != 2 {
			return newError(BadFunctionDefinition, p.String())
		}
		argName, ok := pair[0].MatchAtom()
		if !ok {
			return newError(BadFunctionDefinition, p.String())
		}
		argType, err := ParseTypeSpec(pair[1])
		if err != nil {
			return err
		}
		if err := c.bindName(frame, argName, argType); err != nil {
			return err
		}
		if err := c.markName(p); err != nil {
			return err
		}
		if err := c.markName(pair[0]); err != nil {
			return err
		}
		params = append(params, types.FunctionArg{Name: argName, Type: argType})
	}

	c.readOnly = visibility == contract.ReadOnly
	c.writes = false
	defer func() { c.readOnly, c.writes = false, false }()

	ret, err := c.TypeCheck(args[1], frame)
	if err != nil {
		return err
	}
	if types.IsNoType(ret) {
		return newError(CheckerImplementationFailure, "function body typed as a name")
	}
	if err := c.typeMap.Set(expr, types.Void); err != nil {
		return newError(CheckerImplementationFailure, err)
	}

	fn := &contract.DefinedFunction{
		Name:       name,
		Visibility: visibility,
		Args:       params,
		Body:       args[1],
		Type:       types.Fixed(ret, params...),
		Writes:     c.writes,
	}
	if err := c.contract.AddFunction(fn); err != nil {
		return newError(NameAlreadyUsed, name)
	}
	return nil
}

func (c *Checker) checkDefinitionName(name string) error {
	if natives.IsReservedName(name) || c.contract.HasName(name) {
		return newError(NameAlreadyUsed, name)
	}
	return nil
}
