package runtime

import (
	"bytes"
	"errors"
	"log"
	"math/big"
	"strings"
	"testing"

	"covenant/internal/natives"
	"covenant/internal/value"
)

func TestSimulatedChain_Deterministic(t *testing.T) {
	c := &SimulatedChain{GenesisTime: 1000, BlockInterval: 10, Height: 5}

	v, err := c.BlockInfo(natives.BlockTime, big.NewInt(3))
	if err != nil {
		t.Fatalf("time: %v", err)
	}
	if v.Int.Int64() != 1030 {
		t.Fatalf("time at 3 = %s, want 1030", v)
	}

	a, _ := c.BlockInfo(natives.BlockHeaderHash, big.NewInt(2))
	b, _ := DefaultChain().BlockInfo(natives.BlockHeaderHash, big.NewInt(0))
	again, _ := c.BlockInfo(natives.BlockHeaderHash, big.NewInt(2))
	if len(a.Buffer) != 32 || !value.Equal(a, again) {
		t.Fatalf("header hash must be 32 stable bytes, got %s then %s", a, again)
	}
	if value.Equal(a, b) {
		t.Fatalf("different heights should hash differently")
	}
	seed, _ := c.BlockInfo(natives.VRFSeed, big.NewInt(2))
	if value.Equal(a, seed) {
		t.Fatalf("different properties should hash differently")
	}
}

func TestSimulatedChain_OutOfRange(t *testing.T) {
	c := &SimulatedChain{Height: 1}
	for _, h := range []int64{-1, 2} {
		if _, err := c.BlockInfo(natives.BlockTime, big.NewInt(h)); !errors.Is(err, ErrNoSuchBlock) {
			t.Errorf("height %d: expected ErrNoSuchBlock, got %v", h, err)
		}
	}
}

func TestEnv_Printers(t *testing.T) {
	var out bytes.Buffer
	env := NewEnv(WriterPrinter(&out), nil, Limits{})
	env.Print(value.Int(42))
	if out.String() != "42\n" {
		t.Fatalf("writer printer got %q", out.String())
	}
	if env.Limits().MaxCallDepth != DefaultMaxCallDepth {
		t.Fatalf("zero limits should select the default depth")
	}

	var logged bytes.Buffer
	env = NewEnv(LogPrinter(log.New(&logged, "", 0)), nil, DefaultLimits())
	env.Print(value.Bool(true))
	if !strings.Contains(logged.String(), "print: true") {
		t.Fatalf("log printer got %q", logged.String())
	}
}
