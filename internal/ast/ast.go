package ast

import (
	"math/big"

	"covenant/internal/token"
)

// ID identifies an expression node. IDs are assigned by the parser in
// creation order and are unique within one parsed program.
type ID uint64

type Kind int

const (
	Atom Kind = iota
	IntLiteral
	BoolLiteral
	BufferLiteral
	NullLiteral
	List
)

func (k Kind) String() string {
	switch k {
	case Atom:
		return "atom"
	case IntLiteral:
		return "int"
	case BoolLiteral:
		return "bool"
	case BufferLiteral:
		return "buffer"
	case NullLiteral:
		return "null"
	case List:
		return "list"
	default:
		return "invalid"
	}
}

// Expr is a symbolic expression: an atom, a literal, or an ordered list of
// sub-expressions.
type Expr struct {
	ID   ID
	Kind Kind
	Pos  token.Position

	Name   string   // Atom
	Int    *big.Int // IntLiteral
	Bool   bool     // BoolLiteral
	Buffer []byte   // BufferLiteral
	List   []*Expr  // List
}

// Program is a parsed source unit: its top-level expressions in order.
type Program struct {
	Exprs []*Expr
}

// MatchAtom returns the identifier if e is an atom.
func (e *Expr) MatchAtom() (string, bool) {
	if e == nil || e.Kind != Atom {
		return "", false
	}
	return e.Name, true
}

// MatchList returns the children if e is a list.
func (e *Expr) MatchList() ([]*Expr, bool) {
	if e == nil || e.Kind != List {
		return nil, false
	}
	return e.List, true
}

// Head returns the atom in function position of a list expression.
func (e *Expr) Head() (string, []*Expr, bool) {
	items, ok := e.MatchList()
	if !ok || len(items) == 0 {
		return "", nil, false
	}
	name, ok := items[0].MatchAtom()
	if !ok {
		return "", nil, false
	}
	return name, items[1:], true
}

// Walk calls fn for e and every sub-expression, depth first.
func Walk(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	for _, child := range e.List {
		Walk(child, fn)
	}
}

// MaxID returns the highest node ID in the program.
func (p *Program) MaxID() ID {
	var max ID
	for _, e := range p.Exprs {
		Walk(e, func(n *Expr) {
			if n.ID > max {
				max = n.ID
			}
		})
	}
	return max
}
