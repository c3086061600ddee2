package vm

import (
	"errors"
	"fmt"

	"covenant/internal/ast"
	"covenant/internal/natives"
	"covenant/internal/runtime"
	"covenant/internal/scope"
	"covenant/internal/value"
)

// specialEval evaluates a special native over its raw arguments.
type specialEval func(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error)

var specialEvals map[natives.ID]specialEval

func init() {
	specialEvals = map[natives.ID]specialEval{
		natives.Equals:             evalEquals,
		natives.If:                 evalIf,
		natives.Let:                evalLet,
		natives.Begin:              evalBegin,
		natives.ListCons:           evalListCons,
		natives.Map:                evalMap,
		natives.Filter:             evalFilter,
		natives.Fold:               evalFold,
		natives.TupleCons:          evalTupleCons,
		natives.TupleGet:           evalTupleGet,
		natives.FetchEntry:         evalFetchEntry,
		natives.FetchContractEntry: evalFetchContractEntry,
		natives.SetEntry:           evalSetEntry,
		natives.InsertEntry:        evalInsertEntry,
		natives.DeleteEntry:        evalDeleteEntry,
		natives.ContractCall:       evalContractCall,
		natives.AsContract:         evalAsContract,
		natives.GetBlockInfo:       evalGetBlockInfo,
		natives.Print:              evalPrint,
		natives.ConsOkay:           evalOkay,
		natives.ConsError:          evalError,
		natives.DefaultTo:          evalDefaultTo,
		natives.Expects:            evalExpects,
		natives.ExpectsErr:         evalExpectsErr,
		natives.IsOkay:             evalIsOkay,
		natives.IsNone:             evalIsNone,
	}
	for _, m := range natives.All() {
		if _, ok := specialEvals[m.ID]; ok != m.IsSpecial() {
			panic(fmt.Sprintf("vm: special eval registration for %s does not match the native table", m.Name))
		}
	}
}

func expectArgs(args []*ast.Expr, n int) error {
	if len(args) != n {
		return newError(InvalidArguments, "expected %d arguments, got %d", n, len(args))
	}
	return nil
}

func atomArg(expr *ast.Expr) (string, error) {
	name, ok := expr.MatchAtom()
	if !ok {
		return "", newError(InterpreterFailure, "%s: expected a name, got %s", expr.Pos, expr)
	}
	return name, nil
}

func evalEquals(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	vals, err := vm.evalAll(args, sc)
	if err != nil {
		return value.Value{}, err
	}
	if len(vals) == 0 {
		return value.Value{}, newError(InvalidArguments, "eq? needs at least one argument")
	}
	for _, v := range vals[1:] {
		if !value.Equal(vals[0], v) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

// Only the chosen branch of an if is evaluated.
func evalIf(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 3); err != nil {
		return value.Value{}, err
	}
	cond, err := vm.eval(args[0], sc)
	if err != nil {
		return value.Value{}, err
	}
	if cond.Kind != value.KindBool {
		return value.Value{}, newError(TypeError, "if condition must be bool, got %s", cond.Kind)
	}
	if cond.Bool {
		return vm.eval(args[1], sc)
	}
	return vm.eval(args[2], sc)
}

func evalLet(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	bindings, ok := args[0].MatchList()
	if !ok {
		return value.Value{}, newError(ExpectedListPairs, "let bindings must be a list")
	}

	names := make([]string, len(bindings))
	vals := make([]value.Value, len(bindings))
	for i, binding := range bindings {
		pair, ok := binding.MatchList()
		if !ok || len(pair) != 2 {
			return value.Value{}, newError(ExpectedListPairs, "let binding must be a (name expr) pair")
		}
		name, err := atomArg(pair[0])
		if err != nil {
			return value.Value{}, err
		}
		v, err := vm.eval(pair[1], sc)
		if err != nil {
			return value.Value{}, err
		}
		names[i], vals[i] = name, v
	}

	letScope := vm.scopes.Push(sc)
	defer vm.scopes.Pop(letScope)
	for i, name := range names {
		if err := vm.scopes.Bind(letScope, name, vals[i]); err != nil {
			return value.Value{}, wrapError(InterpreterFailure, err)
		}
	}
	return vm.eval(args[1], letScope)
}

func evalBegin(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, newError(InvalidArguments, "begin needs at least one expression")
	}
	var last value.Value
	for _, arg := range args {
		v, err := vm.eval(arg, sc)
		if err != nil {
			return value.Value{}, err
		}
		last = v
	}
	return last, nil
}

func evalTupleCons(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	fields := make([]value.TupleField, 0, len(args))
	for _, arg := range args {
		pair, ok := arg.MatchList()
		if !ok || len(pair) != 2 {
			return value.Value{}, newError(ExpectedListPairs, "tuple fields must be (name expr) pairs")
		}
		name, err := atomArg(pair[0])
		if err != nil {
			return value.Value{}, err
		}
		v, err := vm.eval(pair[1], sc)
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.TupleField{Name: name, Value: v})
	}
	t, err := value.Tuple(fields)
	if err != nil {
		return value.Value{}, wrapError(InvalidArguments, err)
	}
	return t, nil
}

// (get field target); a none target yields none.
func evalTupleGet(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	field, err := atomArg(args[0])
	if err != nil {
		return value.Value{}, err
	}
	target, err := vm.eval(args[1], sc)
	if err != nil {
		return value.Value{}, err
	}

	lifted := false
	if target.Kind == value.KindOptional {
		if !target.Optional.IsSome {
			return value.None(), nil
		}
		target, lifted = target.Optional.Value, true
	}
	if target.Kind != value.KindTuple {
		return value.Value{}, newError(TypeError, "get expects a tuple, got %s", target.Kind)
	}
	v, ok := target.Field(field)
	if !ok {
		return value.Value{}, newError(Undefined, "tuple has no field %s", field)
	}
	if lifted {
		return value.Some(v), nil
	}
	return v, nil
}

// (contract-call! contract function args...) runs a public function of
// contract. Arguments are evaluated in the caller; the callee's maps are
// the ones touched by the call. tx-sender is unchanged.
func evalContractCall(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if len(args) < 2 {
		return value.Value{}, newError(InvalidArguments, "contract-call! needs a contract and a function")
	}
	contractName, err := atomArg(args[0])
	if err != nil {
		return value.Value{}, err
	}
	funcName, err := atomArg(args[1])
	if err != nil {
		return value.Value{}, err
	}
	target, err := vm.resolveContract(contractName)
	if err != nil {
		return value.Value{}, err
	}
	fn, ok := target.Function(funcName)
	if !ok || !fn.Callable() {
		return value.Value{}, newError(Undefined, "no public function %s.%s", contractName, funcName)
	}
	vals, err := vm.evalAll(args[2:], sc)
	if err != nil {
		return value.Value{}, err
	}
	return vm.apply(Frame{Contract: target, Function: funcName, Sender: vm.frame().Sender}, fn, vals)
}

// (as-contract expr) evaluates expr with the current contract as tx-sender.
func evalAsContract(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 1); err != nil {
		return value.Value{}, err
	}
	f := vm.frame()
	prev := f.Sender
	f.Sender = f.Contract.Name
	v, err := vm.eval(args[0], sc)
	vm.frame().Sender = prev
	return v, err
}

func evalGetBlockInfo(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 2); err != nil {
		return value.Value{}, err
	}
	name, err := atomArg(args[0])
	if err != nil {
		return value.Value{}, err
	}
	prop, ok := natives.LookupBlockInfo(name)
	if !ok {
		return value.Value{}, newError(Undefined, "no block info property %s", name)
	}
	height, err := vm.eval(args[1], sc)
	if err != nil {
		return value.Value{}, err
	}
	if height.Kind != value.KindInt {
		return value.Value{}, newError(TypeError, "block height must be int, got %s", height.Kind)
	}
	v, err := vm.env.Chain().BlockInfo(prop, height.Int)
	if err != nil {
		if errors.Is(err, runtime.ErrNoSuchBlock) {
			return value.Value{}, wrapError(InvalidArguments, err)
		}
		return value.Value{}, wrapError(InterpreterFailure, err)
	}
	return v, nil
}

// print sends its argument to the environment and returns it.
func evalPrint(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 1); err != nil {
		return value.Value{}, err
	}
	v, err := vm.eval(args[0], sc)
	if err != nil {
		return value.Value{}, err
	}
	vm.env.Print(v)
	return v, nil
}
