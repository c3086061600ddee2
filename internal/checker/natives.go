package checker

import (
	"errors"
	"fmt"

	"covenant/internal/ast"
	"covenant/internal/natives"
	"covenant/internal/scope"
	"covenant/internal/types"
)

// specialRule types a special native over its raw argument expressions.
type specialRule func(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error)

var specialRules map[natives.ID]specialRule

func init() {
	specialRules = map[natives.ID]specialRule{
		natives.Equals:             checkEquals,
		natives.If:                 checkIf,
		natives.Let:                checkLet,
		natives.Begin:              checkBegin,
		natives.ListCons:           checkListCons,
		natives.Map:                checkMap,
		natives.Filter:             checkFilter,
		natives.Fold:               checkFold,
		natives.TupleCons:          checkTupleCons,
		natives.TupleGet:           checkTupleGet,
		natives.FetchEntry:         checkFetchEntry,
		natives.FetchContractEntry: checkFetchContractEntry,
		natives.SetEntry:           checkSetEntry,
		natives.InsertEntry:        checkInsertEntry,
		natives.DeleteEntry:        checkDeleteEntry,
		natives.ContractCall:       checkContractCall,
		natives.AsContract:         checkPassthrough,
		natives.GetBlockInfo:       checkGetBlockInfo,
		natives.Print:              checkPassthrough,
		natives.ConsOkay:           checkOkay,
		natives.ConsError:          checkError,
		natives.DefaultTo:          checkDefaultTo,
		natives.Expects:            checkExpects,
		natives.ExpectsErr:         checkExpectsErr,
		natives.IsOkay:             checkIsOkay,
		natives.IsNone:             checkIsNone,
	}
	for _, m := range natives.All() {
		if _, ok := specialRules[m.ID]; ok != m.IsSpecial() {
			panic(fmt.Sprintf("checker: special rule registration for %s does not match the native table", m.Name))
		}
	}
}

func expectType(expected, actual types.TypeSignature) error {
	if !types.Admits(expected, actual) {
		return newError(TypeError, expected, actual)
	}
	return nil
}

func mismatch(kind ErrorKind, err error) error {
	var me *types.MismatchError
	if errors.As(err, &me) {
		return newError(kind, me.A, me.B)
	}
	return newError(kind, err)
}

// (eq? a b ...) every argument must unify with the others.
func checkEquals(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if len(args) < 1 {
		return nil, newError(VariadicNeedsOneArgument)
	}
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	unified := argTypes[0]
	for _, t := range argTypes[1:] {
		if unified, err = types.MostAdmissive(unified, t); err != nil {
			return nil, mismatch(TypeError, err)
		}
	}
	return types.Bool, nil
}

func checkIf(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 3); err != nil {
		return nil, err
	}
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	if err := expectType(types.Bool, argTypes[0]); err != nil {
		return nil, err
	}
	t, err := types.MostAdmissive(argTypes[1], argTypes[2])
	if err != nil {
		return nil, mismatch(DefaultTypesMustMatch, err)
	}
	return t, nil
}

// (let ((name expr) ...) body) binding expressions are checked in the
// enclosing scope, so bindings cannot see each other.
func checkLet(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	bindings, ok := args[0].MatchList()
	if !ok {
		return nil, newError(BadLetSyntax)
	}
	if err := c.markName(args[0]); err != nil {
		return nil, err
	}

	letFrame := c.scopes.Push(frame)
	defer c.scopes.Pop(letFrame)

	for _, binding := range bindings {
		pair, ok := binding.MatchList()
		if !ok || len(pair) != 2 {
			return nil, newError(BadLetSyntax)
		}
		name, ok := pair[0].MatchAtom()
		if !ok {
			return nil, newError(BadLetSyntax)
		}
		if err := c.markName(binding); err != nil {
			return nil, err
		}
		if err := c.markName(pair[0]); err != nil {
			return nil, err
		}
		t, err := c.TypeCheck(pair[1], frame)
		if err != nil {
			return nil, err
		}
		if err := c.bindName(letFrame, name, t); err != nil {
			return nil, err
		}
	}
	return c.TypeCheck(args[1], letFrame)
}

func checkBegin(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if len(args) < 1 {
		return nil, newError(VariadicNeedsOneArgument)
	}
	argTypes, err := c.TypeCheckAll(args, frame)
	if err != nil {
		return nil, err
	}
	return argTypes[len(argTypes)-1], nil
}

// checkPassthrough types print and as-contract: one argument, whose type
// is the result.
func checkPassthrough(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	return c.TypeCheck(args[0], frame)
}

// (tuple (name expr) ...)
func checkTupleCons(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if len(args) < 1 {
		return nil, newError(VariadicNeedsOneArgument)
	}
	fields := make([]types.Field, 0, len(args))
	for _, arg := range args {
		pair, ok := arg.MatchList()
		if !ok || len(pair) != 2 {
			return nil, newError(TupleExpectsPairs)
		}
		name, ok := pair[0].MatchAtom()
		if !ok {
			return nil, newError(TupleExpectsPairs)
		}
		if err := c.markName(arg); err != nil {
			return nil, err
		}
		if err := c.markName(pair[0]); err != nil {
			return nil, err
		}
		t, err := c.TypeCheck(pair[1], frame)
		if err != nil {
			return nil, err
		}
		// a bare 'null has no payload type to store
		if o, ok := t.(*types.Optional); ok && types.IsAny(o.Inner) {
			return nil, newError(BadTupleConstruction, fmt.Sprintf("field %s has no concrete type", name))
		}
		fields = append(fields, types.Field{Name: name, Type: t})
	}
	tt, err := types.NewTuple(fields)
	if err != nil {
		return nil, newError(BadTupleConstruction, err.Error())
	}
	return tt, nil
}

// (get field target) on a tuple, or on an optional tuple lifting the
// result into an optional.
func checkTupleGet(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	field, ok := args[0].MatchAtom()
	if !ok {
		return nil, newError(BadTupleFieldName, args[0].String())
	}
	if err := c.markName(args[0]); err != nil {
		return nil, err
	}
	target, err := c.TypeCheck(args[1], frame)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *types.Tuple:
		return fieldType(t, field)
	case *types.Optional:
		inner, ok := t.Inner.(*types.Tuple)
		if !ok {
			return nil, newError(ExpectedTuple, t.Inner)
		}
		ft, err := fieldType(inner, field)
		if err != nil {
			return nil, err
		}
		return types.NewOptional(ft), nil
	}
	return nil, newError(ExpectedTuple, target)
}

func fieldType(t *types.Tuple, field string) (types.TypeSignature, error) {
	ft, err := t.FieldType(field)
	if err != nil {
		return nil, newError(NoSuchTupleField, field)
	}
	return ft, nil
}

// (contract-call! contract function args...)
func checkContractCall(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if len(args) < 2 {
		return nil, newError(IncorrectArgumentCount, 2, len(args))
	}
	contractName, ok := args[0].MatchAtom()
	if !ok {
		return nil, newError(ContractCallExpectName)
	}
	funcName, ok := args[1].MatchAtom()
	if !ok {
		return nil, newError(ContractCallExpectName)
	}
	if err := c.markName(args[0]); err != nil {
		return nil, err
	}
	if err := c.markName(args[1]); err != nil {
		return nil, err
	}

	target, err := c.lookupContract(contractName)
	if err != nil {
		return nil, err
	}
	fn, ok := target.Function(funcName)
	if !ok || !fn.Callable() {
		return nil, newError(NoSuchPublicFunction, contractName, funcName)
	}

	argTypes, err := c.TypeCheckAll(args[2:], frame)
	if err != nil {
		return nil, err
	}
	if err := CheckArgs(fn.Type, argTypes); err != nil {
		return nil, err
	}
	if fn.Writes {
		if err := c.markWrite(); err != nil {
			return nil, err
		}
	}
	return fn.Type.ReturnType(), nil
}

// (get-block-info property height)
func checkGetBlockInfo(c *Checker, args []*ast.Expr, frame scope.FrameID) (types.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	name, ok := args[0].MatchAtom()
	if !ok {
		return nil, newError(GetBlockInfoExpectPropertyName)
	}
	if err := c.markName(args[0]); err != nil {
		return nil, err
	}
	prop, ok := natives.LookupBlockInfo(name)
	if !ok {
		return nil, newError(NoSuchBlockInfoProperty, name)
	}
	height, err := c.TypeCheck(args[1], frame)
	if err != nil {
		return nil, err
	}
	if err := expectType(types.Int, height); err != nil {
		return nil, err
	}
	return prop.Type(), nil
}
