package engine_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"covenant/internal/checker"
	"covenant/internal/contract"
	"covenant/internal/engine"
	"covenant/internal/store"
	"covenant/internal/value"
	"covenant/internal/vm"
)

const teaShop = `
(define-map proper-tea ((tea-type int)) ((amount int)))
(define (stock (tea int) (amount int))
  (set-entry! proper-tea (tuple (tea-type tea)) (tuple (amount amount))))
(define (consume (tea int))
  (let ((current (default-to 0 (get amount (fetch-entry proper-tea (tuple (tea-type tea)))))))
    (if (>= current 1)
        (begin
          (set-entry! proper-tea (tuple (tea-type tea)) (tuple (amount (- current 1))))
          true)
        false)))
(stock 1 3)
(stock 2 5)
(list (consume 1) (consume 1) (consume 2) (consume 2) (consume 2) (consume 1)
      (consume 1) (consume 2) (consume 2) (consume 2) (consume 2) (consume 3))
`

const factorial = `
(define-map factorials ((id int)) ((current int) (index int)))
(define (init-factorial (id int) (factorial int))
  (insert-entry! factorials (tuple (id id)) (tuple (current 1) (index factorial))))
(define (compute (id int))
  (let ((entry (fetch-entry factorials (tuple (id id)))))
    (if (is-none? entry)
        0
        (let ((current (default-to 0 (get current entry)))
              (index (default-to 0 (get index entry))))
          (if (<= index 1)
              current
              (begin
                (set-entry! factorials (tuple (id id))
                            (tuple (current (* current index)) (index (- index 1))))
                0))))))
(init-factorial 1337 3)
(init-factorial 8008 5)
(list (compute 1337) (compute 1337) (compute 1337) (compute 1337) (compute 1337)
      (compute 8008) (compute 8008) (compute 8008) (compute 8008) (compute 8008) (compute 8008))
`

const sillyNames = `
(define-map silly-names ((name int)) ((owner int)))
(define (register (name int) (owner int))
  (if (insert-entry! silly-names (tuple (name name)) (tuple (owner owner))) 1 0))
(define (who-owns (name int))
  (default-to (- 1) (get owner (fetch-entry silly-names (tuple (name name))))))
(define (invalidate (name int) (owner int))
  (let ((current-owner (default-to (- 1) (get owner (fetch-entry silly-names (tuple (name name)))))))
    (if (eq? current-owner owner)
        (if (delete-entry! silly-names (tuple (name name))) 1 0)
        0)))
(list (register 0 0) (register 0 1) (register 1 1) (register 1 0)
      (who-owns 0) (who-owns 1) (invalidate 0 1) (invalidate 1 1)
      (who-owns 0) (who-owns 1))
`

const lists = `
(define-map lists ((name int)) ((contents (list int 5))))
(define (add-list (name int) (content (list int 5)))
  (insert-entry! lists (tuple (name name)) (tuple (contents content))))
(define (get-list (name int))
  (get contents (fetch-entry lists (tuple (name name)))))
(add-list 0 (list 1 2 3 4 5))
(add-list 1 (list 1 2 3))
(list (get-list 0) (get-list 1))
`

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(store.NewMemory(), engine.Options{})
}

// last deploys src and returns the rendering of its last top-level value.
func last(t *testing.T, e *engine.Engine, name, src string) string {
	t.Helper()
	vals, err := e.Deploy(context.Background(), "alice", name, src)
	if err != nil {
		t.Fatalf("deploy %s: %v", name, err)
	}
	if len(vals) == 0 {
		t.Fatalf("deploy %s: no values", name)
	}
	return vals[len(vals)-1].String()
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"tea-shop", teaShop, "(list true true true true true true false true true false false false)"},
		{"factorial", factorial, "(list 0 0 6 6 6 0 0 0 0 120 120)"},
		{"silly-names", sillyNames, "(list 1 0 1 0 0 1 0 1 0 -1)"},
		{"lists", lists, "(list (some (list 1 2 3 4 5)) (some (list 1 2 3)))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := last(t, newEngine(t), tt.name, tt.src); got != tt.want {
				t.Fatalf("got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestScenarios_SQLiteMatchesMemory(t *testing.T) {
	ctx := context.Background()
	lite, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "covenant.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer lite.Close()

	onDisk := engine.New(lite, engine.Options{})
	for _, src := range []struct{ name, src string }{{"tea-shop", teaShop}, {"factorial", factorial}} {
		want := last(t, newEngine(t), src.name, src.src)
		if got := last(t, onDisk, src.name, src.src); got != want {
			t.Fatalf("%s: sqlite %s, memory %s", src.name, got, want)
		}
	}
}

func TestLists_RejectedAtCheckTime(t *testing.T) {
	tests := []string{
		"(add-list 2 (list 1 2 3 4 5 6))",
		"(insert-entry! lists (tuple (name 1)) (tuple (contentious (list 1 2 6))))",
		"(insert-entry! lists (tuple (name 1)) (tuple (contents (list 1 2 6)) (discontents 1)))",
		"(insert-entry! lists (tuple (name 1)) (tuple (contents (list false true false))))",
		"(insert-entry! lists (tuple (name (list 1))) (tuple (contents (list 1 2 3))))",
	}
	for _, extra := range tests {
		_, err := newEngine(t).Deploy(context.Background(), "alice", "lists", lists+extra)
		var ce *checker.CheckError
		if !errors.As(err, &ce) || ce.Kind != checker.TypeError {
			t.Errorf("%s: expected TypeError, got %v", extra, err)
		}
	}
}

func TestDatamapErrors(t *testing.T) {
	for _, src := range []string{
		"(fetch-entry non-existent (tuple (name 1)))",
		"(delete-entry! non-existent (tuple (name 1)))",
	} {
		_, err := newEngine(t).Deploy(context.Background(), "alice", "test", src)
		var ce *checker.CheckError
		if !errors.As(err, &ce) || ce.Kind != checker.NoSuchMap {
			t.Errorf("%s: expected NoSuchMap, got %v", src, err)
		}
	}
}

const vault = `
(define-map balances ((owner (buff 128))) ((amount int)))
(define-read-only (balance-of (owner (buff 128)))
  (default-to 0 (get amount (fetch-entry balances (tuple (owner owner))))))
(define-public (deposit (amount int))
  (begin
    (set-entry! balances (tuple (owner tx-sender))
                (tuple (amount (+ amount (balance-of tx-sender)))))
    (ok amount)))
(define-public (withdraw (amount int))
  (begin
    (set-entry! balances (tuple (owner tx-sender))
                (tuple (amount (- (balance-of tx-sender) amount))))
    (expects! (if (>= (balance-of tx-sender) 0) (ok amount) (err 1)) (err 1))))
`

func TestCall_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	if _, err := e.Deploy(ctx, "alice", "vault", vault); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	alice := value.Buffer([]byte("alice"))
	balance := func() string {
		t.Helper()
		v, err := e.Call(ctx, "alice", "vault", "balance-of", []value.Value{alice})
		if err != nil {
			t.Fatalf("balance-of: %v", err)
		}
		return v.String()
	}

	if _, err := e.Call(ctx, "alice", "vault", "deposit", []value.Value{value.Int(10)}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := balance(); got != "10" {
		t.Fatalf("balance after deposit = %s", got)
	}

	_, err := e.Call(ctx, "alice", "vault", "withdraw", []value.Value{value.Int(25)})
	var ve *vm.Error
	if !errors.As(err, &ve) || ve.Kind != vm.ExpectsFailed {
		t.Fatalf("expected ExpectsFailed, got %v", err)
	}
	if ve.Thrown == nil || ve.Thrown.String() != "(err 1)" {
		t.Fatalf("thrown = %v", ve.Thrown)
	}
	if got := balance(); got != "10" {
		t.Fatalf("failed withdraw leaked a write: balance %s", got)
	}

	if _, err := e.Call(ctx, "alice", "vault", "withdraw", []value.Value{value.Int(4)}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := balance(); got != "6" {
		t.Fatalf("balance after withdraw = %s", got)
	}
}

func TestCall_Errors(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	if _, err := e.Deploy(ctx, "alice", "vault", vault); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := e.Call(ctx, "alice", "nowhere", "deposit", nil); !errors.Is(err, engine.ErrNoSuchContract) {
		t.Fatalf("expected ErrNoSuchContract, got %v", err)
	}
	_, err := e.Call(ctx, "alice", "vault", "deposit", []value.Value{value.Bool(true)})
	var ve *vm.Error
	if !errors.As(err, &ve) || ve.Kind != vm.TypeError {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestSenderMustFitPrincipalType(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	owners := `
(define-map owners ((owner (buff 128))) ((n int)))
(define-public (claim) (begin (set-entry! owners (tuple (owner tx-sender)) (tuple (n 1))) (ok tx-sender)))
(claim)
`
	long := strings.Repeat("s", 200)
	if _, err := e.Deploy(ctx, long, "owners", owners); !errors.Is(err, contract.ErrInvalidSender) {
		t.Fatalf("deploy: expected ErrInvalidSender, got %v", err)
	}
	if _, ok := e.Contracts().Contract("owners"); ok {
		t.Fatalf("rejected deployment was registered")
	}

	widest := strings.Repeat("s", 128)
	if _, err := e.Deploy(ctx, widest, "owners", owners); err != nil {
		t.Fatalf("deploy with a 128-byte sender: %v", err)
	}
	if _, err := e.Call(ctx, long, "owners", "claim", nil); !errors.Is(err, contract.ErrInvalidSender) {
		t.Fatalf("call: expected ErrInvalidSender, got %v", err)
	}
	if _, err := e.NewSession("scratch", long); !errors.Is(err, contract.ErrInvalidSender) {
		t.Fatalf("session: expected ErrInvalidSender, got %v", err)
	}
}

func TestDeploy_FailureLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	bad := `
(define-map m ((k int)) ((v int)))
(insert-entry! m (tuple (k 1)) (tuple (v 1)))
(/ 1 0)
`
	_, err := e.Deploy(ctx, "alice", "broken", bad)
	var ve *vm.Error
	if !errors.As(err, &ve) || ve.Kind != vm.Arithmetic {
		t.Fatalf("expected Arithmetic, got %v", err)
	}
	if _, ok := e.Contracts().Contract("broken"); ok {
		t.Fatalf("failed deployment was registered")
	}

	fixed := `
(define-map m ((k int)) ((v int)))
(fetch-entry m (tuple (k 1)))
`
	if got := last(t, e, "broken", fixed); got != "none" {
		t.Fatalf("entry from failed deployment survived: %s", got)
	}
}

func TestDeploy_ReadOnlyWriteRejected(t *testing.T) {
	src := `
(define-map m ((k int)) ((v int)))
(define-read-only (sneaky (k int)) (insert-entry! m (tuple (k k)) (tuple (v 1))))
`
	_, err := newEngine(t).Deploy(context.Background(), "alice", "ro", src)
	var ce *checker.CheckError
	if !errors.As(err, &ce) || ce.Kind != checker.WriteAttemptedInReadOnly {
		t.Fatalf("expected WriteAttemptedInReadOnly, got %v", err)
	}
}

func TestDeploy_Twice(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	if _, err := e.Deploy(ctx, "alice", "once", "(+ 1 2)"); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := e.Deploy(ctx, "alice", "once", "(+ 1 2)"); err == nil {
		t.Fatalf("second deployment under the same name succeeded")
	}
}

func TestSession_Incremental(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	s, err := e.NewSession("repl", "alice")
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	steps := []struct {
		src  string
		want string
	}{
		{"(define-map m ((k int)) ((v int)))", ""},
		{"(define (put (k int) (v int)) (insert-entry! m (tuple (k k)) (tuple (v v))))", ""},
		{"(put 1 10)", "true"},
		{"(put 1 11)", "false"},
		{"(get v (fetch-entry m (tuple (k 1))))", "(some 10)"},
	}
	for _, step := range steps {
		vals, err := s.Eval(ctx, step.src)
		if err != nil {
			t.Fatalf("%s: %v", step.src, err)
		}
		if step.want == "" {
			if len(vals) != 0 {
				t.Fatalf("%s: definitions should produce no values, got %v", step.src, vals)
			}
			continue
		}
		if len(vals) != 1 || vals[0].String() != step.want {
			t.Fatalf("%s = %v, want %s", step.src, vals, step.want)
		}
	}

	if _, err := s.Eval(ctx, "(put true 1)"); err == nil {
		t.Fatalf("ill-typed input was accepted")
	}
	if _, err := e.Deploy(ctx, "alice", "reader", "(fetch-contract-entry repl m (tuple (k 1)))"); err != nil {
		t.Fatalf("other contracts should see the session contract: %v", err)
	}
}
