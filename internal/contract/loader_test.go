package contract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeContract(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadDir_DependencyOrder(t *testing.T) {
	tmpDir := t.TempDir()

	writeContract(t, tmpDir, "a-exchange.cov", `
(define-public (swap (n int)) (contract-call! tokens transfer n))
`)
	writeContract(t, tmpDir, "tokens.cov", `
(define-map balances ((owner int)) ((amount int)))
(define-public (transfer (n int)) (ok n))
`)
	writeContract(t, tmpDir, "notes.txt", "not a contract")

	srcs, errs := LoadDir(tmpDir)
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(srcs) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(srcs))
	}
	if srcs[0].Name != "tokens" || srcs[1].Name != "a-exchange" {
		t.Fatalf("expected tokens before a-exchange, got %s, %s", srcs[0].Name, srcs[1].Name)
	}
}

func TestLoadDir_Cycle(t *testing.T) {
	tmpDir := t.TempDir()
	writeContract(t, tmpDir, "ping.cov", `(define-public (f (n int)) (contract-call! pong g n))`)
	writeContract(t, tmpDir, "pong.cov", `(define-public (g (n int)) (contract-call! ping f n))`)

	_, errs := LoadDir(tmpDir)
	if len(errs) == 0 {
		t.Fatalf("expected a cycle error")
	}
	if !strings.Contains(errs[0].Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", errs[0])
	}
}

func TestLoadDir_SyntaxErrorNamesFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeContract(t, tmpDir, "broken.cov", `(define-map m ((k int)) ((v int))`)

	_, errs := LoadDir(tmpDir)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "broken.cov") {
		t.Fatalf("error should name the file, got %v", errs[0])
	}
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"tokens", "tea_shop-2"} {
		if err := ValidName(name); err != nil {
			t.Errorf("ValidName(%q) = %v", name, err)
		}
	}
	for _, name := range []string{"", "has space", "dot.ted", strings.Repeat("x", 200)} {
		if err := ValidName(name); err == nil {
			t.Errorf("ValidName(%q) should fail", name)
		}
	}
}

func TestValidSender(t *testing.T) {
	for _, sender := range []string{"", "alice", strings.Repeat("s", 128)} {
		if err := ValidSender(sender); err != nil {
			t.Errorf("ValidSender(%d bytes) = %v", len(sender), err)
		}
	}
	if err := ValidSender(strings.Repeat("s", 129)); !errors.Is(err, ErrInvalidSender) {
		t.Errorf("expected ErrInvalidSender, got %v", err)
	}
}

func TestRegistry_RegisterOnce(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(New("tokens")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(New("tokens")); err == nil {
		t.Fatalf("second registration should fail")
	}
	if _, ok := r.Contract("tokens"); !ok {
		t.Fatalf("tokens should be registered")
	}
	if got := r.Names(); len(got) != 1 || got[0] != "tokens" {
		t.Fatalf("Names() = %v", got)
	}
}
