package parser_test

import (
	"errors"
	"testing"

	"covenant/internal/ast"
	"covenant/internal/parser"
)

func TestParseProgram_Structure(t *testing.T) {
	prog, err := parser.Parse(`(define (add (a int) (b int)) (+ a b))
(add 1 -2) 'true 'null "hi" 0x0102`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(prog.Exprs) != 6 {
		t.Fatalf("expected 6 top-level expressions, got %d", len(prog.Exprs))
	}

	name, args, ok := prog.Exprs[0].Head()
	if !ok || name != "define" || len(args) != 2 {
		t.Fatalf("expected (define sig body), got %s", prog.Exprs[0])
	}

	call := prog.Exprs[1].List
	if call[2].Kind != ast.IntLiteral || call[2].Int.Int64() != -2 {
		t.Errorf("expected -2 literal, got %s", call[2])
	}
	if e := prog.Exprs[2]; e.Kind != ast.BoolLiteral || !e.Bool {
		t.Errorf("expected 'true, got %s", e)
	}
	if e := prog.Exprs[3]; e.Kind != ast.NullLiteral {
		t.Errorf("expected 'null, got %s", e)
	}
	if e := prog.Exprs[4]; e.Kind != ast.BufferLiteral || string(e.Buffer) != "hi" {
		t.Errorf("expected buffer \"hi\", got %s", e)
	}
	if e := prog.Exprs[5]; e.Kind != ast.BufferLiteral || len(e.Buffer) != 2 || e.Buffer[1] != 2 {
		t.Errorf("expected buffer 0x0102, got %s", e)
	}
}

func TestParseProgram_Booleans(t *testing.T) {
	prog, err := parser.Parse("true false 'true 'false truthy")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	want := []bool{true, false, true, false}
	for i, b := range want {
		e := prog.Exprs[i]
		if e.Kind != ast.BoolLiteral || e.Bool != b {
			t.Errorf("expression %d: expected %v literal, got %s", i, b, e)
		}
	}
	if e := prog.Exprs[4]; e.Kind != ast.Atom || e.Name != "truthy" {
		t.Errorf("expected atom truthy, got %s", e)
	}
}

func TestParseProgram_UniqueIDs(t *testing.T) {
	prog, err := parser.Parse(`(let ((x 1) (y 2)) (+ x y)) (list 1 2 3)`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	seen := make(map[ast.ID]bool)
	for _, e := range prog.Exprs {
		ast.Walk(e, func(n *ast.Expr) {
			if n.ID == 0 {
				t.Errorf("node %s has no ID", n)
			}
			if seen[n.ID] {
				t.Errorf("duplicate ID %d on %s", n.ID, n)
			}
			seen[n.ID] = true
		})
	}
}

func TestParseProgram_RoundTrip(t *testing.T) {
	src := "(if (eq? x 'null) (tuple (a 1)) 0x00ff)\n"
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := ast.Dump(prog); got != src {
		t.Fatalf("expected %q, got %q", src, got)
	}
}

func TestParseProgram_Errors(t *testing.T) {
	tests := []string{
		"(a b",
		")",
		"'maybe",
		"(a \x00)",
	}
	for _, src := range tests {
		_, err := parser.Parse(src)
		var syn *parser.SyntaxError
		if !errors.As(err, &syn) {
			t.Errorf("%q: expected SyntaxError, got %v", src, err)
		}
	}
}
