package main

import (
	"fmt"

	"covenant/internal/ast"
	"covenant/internal/parser"
	"covenant/internal/value"
)

// parseArgs reads -call arguments. Each one must be a literal: an integer,
// true, false, a hex or string buffer, or 'null.
func parseArgs(args []string) ([]value.Value, error) {
	out := make([]value.Value, 0, len(args))
	for _, arg := range args {
		prog, err := parser.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg, err)
		}
		if len(prog.Exprs) != 1 {
			return nil, fmt.Errorf("argument %q: expected one literal", arg)
		}
		v, err := literal(prog.Exprs[0])
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func literal(e *ast.Expr) (value.Value, error) {
	switch e.Kind {
	case ast.IntLiteral:
		return value.BigInt(e.Int)
	case ast.BoolLiteral:
		return value.Bool(e.Bool), nil
	case ast.BufferLiteral:
		return value.Buffer(e.Buffer), nil
	case ast.NullLiteral:
		return value.None(), nil
	}
	return value.Value{}, fmt.Errorf("not a literal: %s", e)
}
