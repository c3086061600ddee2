package ast

import (
	"encoding/hex"
	"strings"
)

// String renders the expression back into source form.
func (e *Expr) String() string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e *Expr) {
	if e == nil {
		sb.WriteString("<nil>")
		return
	}
	switch e.Kind {
	case Atom:
		sb.WriteString(e.Name)
	case IntLiteral:
		sb.WriteString(e.Int.String())
	case BoolLiteral:
		if e.Bool {
			sb.WriteString("'true")
		} else {
			sb.WriteString("'false")
		}
	case BufferLiteral:
		sb.WriteString("0x")
		sb.WriteString(hex.EncodeToString(e.Buffer))
	case NullLiteral:
		sb.WriteString("'null")
	case List:
		sb.WriteByte('(')
		for i, child := range e.List {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeExpr(sb, child)
		}
		sb.WriteByte(')')
	}
}

// Dump returns the program with one top-level expression per line.
func Dump(prog *Program) string {
	var sb strings.Builder
	for _, e := range prog.Exprs {
		writeExpr(&sb, e)
		sb.WriteByte('\n')
	}
	return sb.String()
}
