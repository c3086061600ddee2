package token

import "fmt"

type Kind int

const (
	Illegal Kind = iota
	EOF

	Ident  // Identifier or operator symbol: define-map, +, eq?
	Int    // Integer literal, optionally signed
	String // String literal, read as a buffer
	Hex    // Hex buffer literal: 0xdeadbeef
	Quote  // Quoted constant: 'true, 'false, 'null

	LParen // (
	RParen // )
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}

func (k Kind) String() string {
	switch k {
	case Illegal:
		return "Illegal"
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Int:
		return "Int"
	case String:
		return "String"
	case Hex:
		return "Hex"
	case Quote:
		return "Quote"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Pos)
}
