package checker

import (
	"covenant/internal/ast"
	"covenant/internal/types"
)

// ParseTypeSpec reads a textual type: int, bool, (buff N), (list T N),
// (optional T), (response T E) or (tuple (name T) ...).
func ParseTypeSpec(expr *ast.Expr) (types.TypeSignature, error) {
	if name, ok := expr.MatchAtom(); ok {
		switch name {
		case "int":
			return types.Int, nil
		case "bool":
			return types.Bool, nil
		}
		return nil, newError(UnknownTypeName, name)
	}

	head, args, ok := expr.Head()
	if !ok {
		return nil, newError(InvalidTypeDescription, expr.String())
	}
	switch head {
	case "buff":
		if len(args) != 1 {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		n, ok := smallInt(args[0])
		if !ok {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		bt, err := types.NewBuffer(n)
		if err != nil || n == 0 {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		return bt, nil

	case "list":
		if len(args) != 2 {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		elem, err := ParseTypeSpec(args[0])
		if err != nil {
			return nil, err
		}
		n, ok := smallInt(args[1])
		if !ok {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		lt, err := types.NewList(elem, n, 1)
		if err != nil {
			return nil, newError(InvalidTypeDescription, err.Error())
		}
		return lt, nil

	case "optional":
		if len(args) != 1 {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		inner, err := ParseTypeSpec(args[0])
		if err != nil {
			return nil, err
		}
		return types.NewOptional(inner), nil

	case "response":
		if len(args) != 2 {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		okType, err := ParseTypeSpec(args[0])
		if err != nil {
			return nil, err
		}
		errType, err := ParseTypeSpec(args[1])
		if err != nil {
			return nil, err
		}
		return types.NewResponse(okType, errType), nil

	case "tuple":
		if len(args) == 0 {
			return nil, newError(InvalidTypeDescription, expr.String())
		}
		fields := make([]types.Field, 0, len(args))
		for _, arg := range args {
			pair, ok := arg.MatchList()
			if !ok || len(pair) != 2 {
				return nil, newError(InvalidTypeDescription, arg.String())
			}
			name, ok := pair[0].MatchAtom()
			if !ok {
				return nil, newError(InvalidTypeDescription, arg.String())
			}
			t, err := ParseTypeSpec(pair[1])
			if err != nil {
				return nil, err
			}
			fields = append(fields, types.Field{Name: name, Type: t})
		}
		tt, err := types.NewTuple(fields)
		if err != nil {
			return nil, newError(InvalidTypeDescription, err.Error())
		}
		return tt, nil
	}
	return nil, newError(UnknownTypeName, head)
}

func smallInt(expr *ast.Expr) (int, bool) {
	if expr.Kind != ast.IntLiteral || !expr.Int.IsInt64() {
		return 0, false
	}
	n := expr.Int.Int64()
	if n < 0 || n > int64(types.MaxBufferLength) {
		return 0, false
	}
	return int(n), true
}
