package parser

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"covenant/internal/ast"
	"covenant/internal/lexer"
	"covenant/internal/token"
)

type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	nextID ast.ID
	errors []string
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// init cur/peek
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns lexical and syntax errors, in source order.
func (p *Parser) Errors() []string {
	return append(append([]string(nil), p.l.Errors()...), p.errors...)
}

// LastID returns the highest node ID assigned so far.
func (p *Parser) LastID() ast.ID { return p.nextID }

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	msg := fmt.Sprintf("%d:%d: ", pos.Line, pos.Column) + fmt.Sprintf(format, args...)
	p.errors = append(p.errors, msg)
}

func (p *Parser) node(kind ast.Kind, pos token.Position) *ast.Expr {
	p.nextID++
	return &ast.Expr{ID: p.nextID, Kind: kind, Pos: pos}
}

// ---------- Top-level ----------

func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.cur.Kind != token.EOF {
		if p.cur.Kind == token.RParen {
			p.errorf(p.cur.Pos, "unexpected ')' at top level")
			p.nextToken()
			continue
		}
		if e := p.parseExpr(); e != nil {
			prog.Exprs = append(prog.Exprs, e)
		}
	}
	return prog
}

// Parse reads every top-level expression in src.
func Parse(src string) (*ast.Program, error) {
	return ParseAfter(src, 0)
}

// ParseAfter is Parse with node IDs starting after last, so that separately
// parsed fragments never share an ID.
func ParseAfter(src string, last ast.ID) (*ast.Program, error) {
	p := New(lexer.New(src))
	p.nextID = last
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, &SyntaxError{Messages: errs}
	}
	return prog, nil
}

// SyntaxError aggregates reader failures.
type SyntaxError struct {
	Messages []string
}

func (e *SyntaxError) Error() string {
	if len(e.Messages) == 1 {
		return "syntax error: " + e.Messages[0]
	}
	return fmt.Sprintf("syntax error: %s (and %d more)", e.Messages[0], len(e.Messages)-1)
}

// ---------- Expressions ----------

func (p *Parser) parseExpr() *ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case token.LParen:
		return p.parseList()
	case token.Ident:
		if tok.Lexeme == "true" || tok.Lexeme == "false" {
			e := p.node(ast.BoolLiteral, tok.Pos)
			e.Bool = tok.Lexeme == "true"
			p.nextToken()
			return e
		}
		e := p.node(ast.Atom, tok.Pos)
		e.Name = tok.Lexeme
		p.nextToken()
		return e
	case token.Int:
		n, ok := new(big.Int).SetString(tok.Lexeme, 10)
		if !ok {
			p.errorf(tok.Pos, "invalid integer literal %q", tok.Lexeme)
			p.nextToken()
			return nil
		}
		e := p.node(ast.IntLiteral, tok.Pos)
		e.Int = n
		p.nextToken()
		return e
	case token.String:
		e := p.node(ast.BufferLiteral, tok.Pos)
		e.Buffer = []byte(tok.Lexeme)
		p.nextToken()
		return e
	case token.Hex:
		b, err := hex.DecodeString(tok.Lexeme)
		if err != nil {
			p.errorf(tok.Pos, "invalid hex literal: %v", err)
			p.nextToken()
			return nil
		}
		e := p.node(ast.BufferLiteral, tok.Pos)
		e.Buffer = b
		p.nextToken()
		return e
	case token.Quote:
		return p.parseQuoted()
	case token.Illegal:
		// already reported by the lexer
		p.nextToken()
		return nil
	default:
		p.errorf(tok.Pos, "unexpected token %s", tok.Kind)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseQuoted() *ast.Expr {
	tok := p.cur
	p.nextToken()
	switch tok.Lexeme {
	case "true", "false":
		e := p.node(ast.BoolLiteral, tok.Pos)
		e.Bool = tok.Lexeme == "true"
		return e
	case "null":
		return p.node(ast.NullLiteral, tok.Pos)
	default:
		p.errorf(tok.Pos, "unknown constant '%s", tok.Lexeme)
		return nil
	}
}

func (p *Parser) parseList() *ast.Expr {
	e := p.node(ast.List, p.cur.Pos)
	p.nextToken() // consume '('
	e.List = []*ast.Expr{}
	for p.cur.Kind != token.RParen {
		if p.cur.Kind == token.EOF {
			p.errorf(e.Pos, "unterminated list")
			return e
		}
		if child := p.parseExpr(); child != nil {
			e.List = append(e.List, child)
		}
	}
	p.nextToken() // consume ')'
	return e
}
