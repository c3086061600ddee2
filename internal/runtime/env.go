package runtime

import (
	"fmt"
	"io"
	"log"
	"os"

	"covenant/internal/value"
)

// Printer receives the output of the print native.
type Printer interface {
	Println(string)
}

// Limits bound a single evaluation.
type Limits struct {
	MaxCallDepth int
}

const DefaultMaxCallDepth = 128

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxCallDepth: DefaultMaxCallDepth}
}

// Env aggregates host services used by the evaluator: print output, block
// information and limits.
type Env struct {
	printer Printer
	chain   BlockInfo
	limits  Limits
}

// Printer returns the print service.
func (e *Env) Printer() Printer {
	return e.printer
}

// Chain returns the block info provider.
func (e *Env) Chain() BlockInfo {
	return e.chain
}

func (e *Env) Limits() Limits {
	return e.limits
}

// Print renders v with the print service.
func (e *Env) Print(v value.Value) {
	if e == nil || e.printer == nil {
		return
	}
	e.printer.Println(v.String())
}

// writerPrinter prints one line per call to an io.Writer.
type writerPrinter struct {
	w io.Writer
}

func (p *writerPrinter) Println(s string) {
	fmt.Fprintln(p.w, s)
}

// WriterPrinter prints to w.
func WriterPrinter(w io.Writer) Printer {
	return &writerPrinter{w: w}
}

// logPrinter sends print output through a logger, so it is interleaved
// with the engine's own log lines.
type logPrinter struct {
	logger *log.Logger
}

func (p *logPrinter) Println(s string) {
	p.logger.Printf("print: %s", s)
}

// LogPrinter prints through l.
func LogPrinter(l *log.Logger) Printer {
	return &logPrinter{logger: l}
}

// DefaultEnv returns an Env that prints to stdout over a simulated chain
// with default limits.
func DefaultEnv() *Env {
	return &Env{
		printer: WriterPrinter(os.Stdout),
		chain:   DefaultChain(),
		limits:  DefaultLimits(),
	}
}

// NewEnv creates an Env from explicit services. A nil chain selects the
// default simulated chain and a non-positive call depth the default limit.
func NewEnv(p Printer, chain BlockInfo, limits Limits) *Env {
	if chain == nil {
		chain = DefaultChain()
	}
	if limits.MaxCallDepth <= 0 {
		limits.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Env{printer: p, chain: chain, limits: limits}
}
