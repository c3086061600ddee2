package lexer_test

import (
	"testing"

	"covenant/internal/lexer"
	"covenant/internal/token"
)

func TestNextToken_BasicProgram(t *testing.T) {
	input := `(define-map tea ((tea-type int)) ((amount int)))
;; stock some tea
(insert-entry! tea (tuple (tea-type 1)) (tuple (amount -3)))
(eq? 'null "abc" 0xbeef (- 1))
`

	tests := []struct {
		kind token.Kind
		lit  string
	}{
		{token.LParen, "("},
		{token.Ident, "define-map"},
		{token.Ident, "tea"},
		{token.LParen, "("},
		{token.LParen, "("},
		{token.Ident, "tea-type"},
		{token.Ident, "int"},
		{token.RParen, ")"},
		{token.RParen, ")"},
		{token.LParen, "("},
		{token.LParen, "("},
		{token.Ident, "amount"},
		{token.Ident, "int"},
		{token.RParen, ")"},
		{token.RParen, ")"},
		{token.RParen, ")"},

		{token.LParen, "("},
		{token.Ident, "insert-entry!"},
		{token.Ident, "tea"},
		{token.LParen, "("},
		{token.Ident, "tuple"},
		{token.LParen, "("},
		{token.Ident, "tea-type"},
		{token.Int, "1"},
		{token.RParen, ")"},
		{token.RParen, ")"},
		{token.LParen, "("},
		{token.Ident, "tuple"},
		{token.LParen, "("},
		{token.Ident, "amount"},
		{token.Int, "-3"},
		{token.RParen, ")"},
		{token.RParen, ")"},
		{token.RParen, ")"},

		{token.LParen, "("},
		{token.Ident, "eq?"},
		{token.Quote, "null"},
		{token.String, "abc"},
		{token.Hex, "beef"},
		{token.LParen, "("},
		{token.Ident, "-"},
		{token.Int, "1"},
		{token.RParen, ")"},
		{token.RParen, ")"},

		{token.EOF, ""},
	}

	l := lexer.New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind || tok.Lexeme != tt.lit {
			t.Fatalf("tests[%d]: expected %s(%q), got %s(%q)", i, tt.kind, tt.lit, tok.Kind, tok.Lexeme)
		}
	}
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}
}

func TestNextToken_Positions(t *testing.T) {
	l := lexer.New("(a\n  b)")
	want := []token.Position{{Line: 1, Column: 1}, {Line: 1, Column: 2}, {Line: 2, Column: 3}, {Line: 2, Column: 4}}
	for i, pos := range want {
		tok := l.NextToken()
		if tok.Pos != pos {
			t.Errorf("token %d (%s): expected position %s, got %s", i, tok.Lexeme, pos, tok.Pos)
		}
	}
}

func TestNextToken_Errors(t *testing.T) {
	tests := []string{
		`"unterminated`,
		`0xabc`,
		`12ab`,
		`' x`,
	}
	for _, input := range tests {
		l := lexer.New(input)
		for tok := l.NextToken(); tok.Kind != token.EOF; tok = l.NextToken() {
		}
		if len(l.Errors()) == 0 {
			t.Errorf("%q: expected a lexer error", input)
		}
	}
}

func TestNextToken_NulIsIllegal(t *testing.T) {
	l := lexer.New("(a \x00 b)")
	var kinds []token.Kind
	for tok := l.NextToken(); tok.Kind != token.EOF; tok = l.NextToken() {
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.LParen, token.Ident, token.Illegal, token.Ident, token.RParen}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: expected %s, got %s", i, k, kinds[i])
		}
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected one error, got %v", l.Errors())
	}
}
