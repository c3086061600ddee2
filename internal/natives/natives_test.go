package natives

import (
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"covenant/internal/value"
)

func call(t *testing.T, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	m, ok := Lookup(name)
	if !ok {
		t.Fatalf("native %q not registered", name)
	}
	if m.IsSpecial() {
		t.Fatalf("native %q is special", name)
	}
	return m.Call(args)
}

func ints(ns ...int64) []value.Value {
	out := make([]value.Value, len(ns))
	for i, n := range ns {
		out[i] = value.Int(n)
	}
	return out
}

func TestRegistry_Exhaustive(t *testing.T) {
	all := All()
	if len(all) != int(numNatives) {
		t.Fatalf("expected %d natives, got %d", numNatives, len(all))
	}
	for i, m := range all {
		if m.ID != ID(i) {
			t.Fatalf("native %s registered at %d has ID %d", m.Name, i, m.ID)
		}
		got, ok := Lookup(m.Name)
		if !ok || got.ID != m.ID {
			t.Fatalf("Lookup(%q) = %v, %v", m.Name, got, ok)
		}
	}
	for _, name := range []string{"if", "let", "fetch-entry", "contract-call!", "expects!"} {
		m, ok := Lookup(name)
		if !ok || !m.IsSpecial() {
			t.Fatalf("%s should be a special native", name)
		}
	}
	if _, ok := Lookup("define"); ok {
		t.Fatalf("define is a top-level form, not a native")
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		args []value.Value
		want int64
	}{
		{"+", ints(1, 2, 3), 6},
		{"-", ints(10, 3, 2), 5},
		{"-", ints(4), -4},
		{"*", ints(2, 3, 4), 24},
		{"/", ints(20, 3), 6},
		{"/", ints(-7, 2), -3},
		{"mod", ints(7, 3), 1},
		{"mod", ints(-7, 3), -1},
		{"pow", ints(2, 10), 1024},
		{"pow", ints(-1, 1001), -1},
		{"xor", ints(6, 3), 5},
		{"xor", ints(-1, 1), -2},
	}
	for _, tt := range tests {
		got, err := call(t, tt.name, tt.args...)
		if err != nil {
			t.Fatalf("%s %v: unexpected error %v", tt.name, tt.args, err)
		}
		if got.Int.Cmp(big.NewInt(tt.want)) != 0 {
			t.Errorf("%s %v = %s, want %d", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestArithmetic_Errors(t *testing.T) {
	maxInt := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	big1, err := value.BigInt(maxInt)
	if err != nil {
		t.Fatalf("BigInt: %v", err)
	}
	tests := []struct {
		name string
		args []value.Value
	}{
		{"+", []value.Value{big1, value.Int(1)}},
		{"*", []value.Value{big1, value.Int(2)}},
		{"/", ints(1, 0)},
		{"mod", ints(1, 0)},
		{"pow", ints(2, 127)},
		{"pow", ints(2, -1)},
		{"pow", ints(3, 1000000)},
	}
	for _, tt := range tests {
		_, err := call(t, tt.name, tt.args...)
		if !errors.Is(err, ErrArithmetic) {
			t.Errorf("%s %v: expected arithmetic error, got %v", tt.name, tt.args, err)
		}
	}

	if _, err := call(t, "+", value.Bool(true)); !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected invalid arguments, got %v", err)
	}
}

func TestComparisonAndLogic(t *testing.T) {
	tests := []struct {
		name string
		args []value.Value
		want bool
	}{
		{">=", ints(3, 3), true},
		{"<=", ints(4, 3), false},
		{"<", ints(-1, 0), true},
		{">", ints(1, 2), false},
		{"and", []value.Value{value.Bool(true), value.Bool(true)}, true},
		{"and", []value.Value{value.Bool(true), value.Bool(false)}, false},
		{"or", []value.Value{value.Bool(false), value.Bool(true)}, true},
		{"or", []value.Value{value.Bool(false)}, false},
		{"not", []value.Value{value.Bool(false)}, true},
	}
	for _, tt := range tests {
		got, err := call(t, tt.name, tt.args...)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got.Kind != value.KindBool || got.Bool != tt.want {
			t.Errorf("%s %v = %s, want %v", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestHashes_EmptyBuffer(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"sha256", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"keccak256", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"hash160", "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb"},
	}
	for _, tt := range tests {
		got, err := call(t, tt.name, value.Buffer(nil))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if hex.EncodeToString(got.Buffer) != tt.want {
			t.Errorf("%s(0x) = %x, want %s", tt.name, got.Buffer, tt.want)
		}
	}
}

func TestHashInput(t *testing.T) {
	in := HashInput(value.Int(1))
	if len(in) != 16 || in[0] != 1 || in[15] != 0 {
		t.Fatalf("int hash input should be little endian, got %x", in)
	}
	in = HashInput(value.Int(-1))
	for _, b := range in {
		if b != 0xff {
			t.Fatalf("-1 should hash as all 0xff bytes, got %x", in)
		}
	}
	if got := HashInput(value.Buffer([]byte("abc"))); string(got) != "abc" {
		t.Fatalf("buffer hash input should be raw bytes, got %x", got)
	}
	some := value.Some(value.Int(1))
	if got := HashInput(some); string(got) != string(value.Encode(some)) {
		t.Fatalf("composite hash input should be canonical encoding")
	}
}
