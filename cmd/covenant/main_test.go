package main

import (
	"testing"
)

func TestParseArgs(t *testing.T) {
	vals, err := parseArgs([]string{"42", "-7", "true", `"alice"`, "0x0a0b", "'null"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	want := []string{"42", "-7", "true", "0x616c696365", "0x0a0b", "none"}
	if len(vals) != len(want) {
		t.Fatalf("got %d values", len(vals))
	}
	for i, w := range want {
		if got := vals[i].String(); got != w {
			t.Errorf("arg %d = %s, want %s", i, got, w)
		}
	}

	for _, bad := range []string{"(+ 1 2)", "x", "1 2", "("} {
		if _, err := parseArgs([]string{bad}); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestSplitCall(t *testing.T) {
	paths, call := splitCall([]string{"a.cov", "dir", "-call", "a.f", "1", "2"})
	if len(paths) != 2 || len(call) != 3 || call[0] != "a.f" {
		t.Fatalf("paths %v, call %v", paths, call)
	}
	paths, call = splitCall([]string{"a.cov"})
	if len(paths) != 1 || call != nil {
		t.Fatalf("paths %v, call %v", paths, call)
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"(+ 1 2)", 0},
		{"(define (f (x int))", 1},
		{`(print "(")`, 0},
		{"(begin ; (\n 1", 1},
		{"))", -2},
	}
	for _, tt := range tests {
		if got := depth(tt.src); got != tt.want {
			t.Errorf("depth(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}
