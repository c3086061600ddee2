// Package vm evaluates checked programs. Evaluation walks the expression
// tree directly; map operations go through a datamap.View bound to the
// caller's transaction, and host services come from a runtime.Env.
package vm

import (
	"context"
	"errors"

	"covenant/internal/ast"
	"covenant/internal/contract"
	"covenant/internal/datamap"
	"covenant/internal/natives"
	"covenant/internal/runtime"
	"covenant/internal/scope"
	"covenant/internal/types"
	"covenant/internal/value"
)

// Contracts resolves deployed contracts for contract-call! and
// fetch-contract-entry.
type Contracts interface {
	Contract(name string) (*contract.Contract, bool)
}

// Frame represents one activation: the top-level expression or a call of a
// defined function.
type Frame struct {
	Contract *contract.Contract
	Function string // empty at top level
	Sender   string
}

// VM evaluates expressions of deployed contracts. A VM is not safe for
// concurrent use; each evaluation owns it until it returns.
type VM struct {
	ctx       context.Context
	contracts Contracts
	maps      *datamap.View
	env       *runtime.Env

	scopes *scope.Arena[value.Value]
	frames []Frame
}

// NewVM creates a VM. maps may be nil for programs that touch no map; a
// nil env selects runtime.DefaultEnv.
func NewVM(contracts Contracts, maps *datamap.View, env *runtime.Env) *VM {
	if env == nil {
		env = runtime.DefaultEnv()
	}
	return &VM{
		contracts: contracts,
		maps:      maps,
		env:       env,
		scopes:    scope.New[value.Value](),
	}
}

// Frames returns the active frames, innermost last.
func (vm *VM) Frames() []Frame {
	return vm.frames
}

func (vm *VM) frame() *Frame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) pushFrame(f Frame) error {
	if len(vm.frames) >= vm.env.Limits().MaxCallDepth {
		return newError(MaxStackDepthReached, "call depth exceeds %d", vm.env.Limits().MaxCallDepth)
	}
	vm.frames = append(vm.frames, f)
	return nil
}

func (vm *VM) popFrame() {
	vm.frames = vm.frames[:len(vm.frames)-1]
}

func (vm *VM) begin(ctx context.Context) func() {
	prev := vm.ctx
	vm.ctx = ctx
	return func() { vm.ctx = prev }
}

// Eval evaluates a top-level expression of c on behalf of sender.
func (vm *VM) Eval(ctx context.Context, c *contract.Contract, sender string, expr *ast.Expr) (value.Value, error) {
	defer vm.begin(ctx)()
	if err := contract.ValidSender(sender); err != nil {
		return value.Value{}, wrapError(InvalidArguments, err)
	}
	if err := vm.pushFrame(Frame{Contract: c, Sender: sender}); err != nil {
		return value.Value{}, err
	}
	defer vm.popFrame()

	sc := vm.scopes.Push(scope.Root)
	defer vm.scopes.Pop(sc)
	return vm.eval(expr, sc)
}

// Call invokes a public or read-only function of c with already evaluated
// arguments. Arguments from outside a program are not checked statically,
// so their types are verified here.
func (vm *VM) Call(ctx context.Context, c *contract.Contract, sender, name string, args []value.Value) (value.Value, error) {
	defer vm.begin(ctx)()
	if err := contract.ValidSender(sender); err != nil {
		return value.Value{}, wrapError(InvalidArguments, err)
	}
	fn, ok := c.Function(name)
	if !ok || !fn.Callable() {
		return value.Value{}, newError(Undefined, "no public function %s.%s", c.Name, name)
	}
	if len(args) != len(fn.Args) {
		return value.Value{}, newError(InvalidArguments, "%s expects %d arguments, got %d", name, len(fn.Args), len(args))
	}
	for i, arg := range fn.Args {
		if actual := value.TypeOf(args[i]); !types.Admits(arg.Type, actual) {
			return value.Value{}, newError(TypeError, "argument %s: expected %s, got %s", arg.Name, arg.Type, actual)
		}
	}
	return vm.apply(Frame{Contract: c, Function: name, Sender: sender}, fn, args)
}

func (vm *VM) eval(expr *ast.Expr, sc scope.FrameID) (value.Value, error) {
	switch expr.Kind {
	case ast.IntLiteral:
		v, err := value.BigInt(expr.Int)
		if err != nil {
			return value.Value{}, wrapError(InterpreterFailure, err)
		}
		return v, nil
	case ast.BoolLiteral:
		return value.Bool(expr.Bool), nil
	case ast.BufferLiteral:
		return value.Buffer(expr.Buffer), nil
	case ast.NullLiteral:
		return value.None(), nil
	case ast.Atom:
		return vm.lookup(expr.Name, sc)
	case ast.List:
		return vm.evalApplication(expr, sc)
	}
	return value.Value{}, newError(InterpreterFailure, "%s: unexpected %s expression", expr.Pos, expr.Kind)
}

func (vm *VM) evalAll(args []*ast.Expr, sc scope.FrameID) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, arg := range args {
		v, err := vm.eval(arg, sc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (vm *VM) lookup(name string, sc scope.FrameID) (value.Value, error) {
	if v, ok := vm.scopes.Lookup(sc, name); ok {
		return v, nil
	}
	if name == natives.TxSender {
		return value.Buffer([]byte(vm.frame().Sender)), nil
	}
	return value.Value{}, newError(Undefined, "undefined variable %s", name)
}

func (vm *VM) evalApplication(expr *ast.Expr, sc scope.FrameID) (value.Value, error) {
	name, args, ok := expr.Head()
	if !ok {
		return value.Value{}, newError(InterpreterFailure, "%s: application needs a function name", expr.Pos)
	}
	if meta, ok := natives.Lookup(name); ok {
		if meta.IsSpecial() {
			return specialEvals[meta.ID](vm, args, sc)
		}
		vals, err := vm.evalAll(args, sc)
		if err != nil {
			return value.Value{}, err
		}
		return callNative(meta, vals)
	}

	current := vm.frame()
	fn, ok := current.Contract.Function(name)
	if !ok {
		return value.Value{}, newError(Undefined, "unknown function %s", name)
	}
	vals, err := vm.evalAll(args, sc)
	if err != nil {
		return value.Value{}, err
	}
	return vm.apply(Frame{Contract: current.Contract, Function: name, Sender: current.Sender}, fn, vals)
}

func callNative(meta *natives.Meta, args []value.Value) (value.Value, error) {
	v, err := meta.Call(args)
	if err != nil {
		switch {
		case errors.Is(err, natives.ErrArithmetic):
			return value.Value{}, wrapError(Arithmetic, err)
		case errors.Is(err, natives.ErrInvalidArguments):
			return value.Value{}, wrapError(InvalidArguments, err)
		}
		return value.Value{}, wrapError(InterpreterFailure, err)
	}
	return v, nil
}

// apply runs fn's body in a fresh scope holding only its parameters.
func (vm *VM) apply(f Frame, fn *contract.DefinedFunction, args []value.Value) (value.Value, error) {
	if len(args) != len(fn.Args) {
		return value.Value{}, newError(InvalidArguments, "%s expects %d arguments, got %d", fn.Name, len(fn.Args), len(args))
	}
	if err := vm.pushFrame(f); err != nil {
		return value.Value{}, err
	}
	defer vm.popFrame()

	sc := vm.scopes.Push(scope.Root)
	defer vm.scopes.Pop(sc)
	for i, arg := range fn.Args {
		if err := vm.scopes.Bind(sc, arg.Name, args[i]); err != nil {
			return value.Value{}, wrapError(InterpreterFailure, err)
		}
	}
	return vm.eval(fn.Body, sc)
}

// function is a callable resolved from a function name argument.
type function func(args []value.Value) (value.Value, error)

// resolveFunction resolves the name passed to map, filter and fold.
func (vm *VM) resolveFunction(expr *ast.Expr) (function, error) {
	name, ok := expr.MatchAtom()
	if !ok {
		return nil, newError(InterpreterFailure, "%s: expected a function name", expr.Pos)
	}
	if meta, ok := natives.Lookup(name); ok {
		if meta.IsSpecial() {
			return nil, newError(Undefined, "%s cannot be passed as a function", name)
		}
		return func(args []value.Value) (value.Value, error) {
			return callNative(meta, args)
		}, nil
	}
	current := *vm.frame()
	fn, ok := current.Contract.Function(name)
	if !ok {
		return nil, newError(Undefined, "unknown function %s", name)
	}
	return func(args []value.Value) (value.Value, error) {
		return vm.apply(Frame{Contract: current.Contract, Function: name, Sender: current.Sender}, fn, args)
	}, nil
}
