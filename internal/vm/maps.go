package vm

import (
	"errors"

	"covenant/internal/ast"
	"covenant/internal/contract"
	"covenant/internal/datamap"
	"covenant/internal/scope"
	"covenant/internal/value"
)

func (vm *VM) resolveContract(name string) (*contract.Contract, error) {
	if current := vm.frame().Contract; current.Name == name {
		return current, nil
	}
	if vm.contracts != nil {
		if c, ok := vm.contracts.Contract(name); ok {
			return c, nil
		}
	}
	return nil, newError(Undefined, "no such contract %s", name)
}

func (vm *VM) mapView() (*datamap.View, error) {
	if vm.maps == nil {
		return nil, newError(Store, "no map store configured")
	}
	return vm.maps, nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, datamap.ErrNoSuchMap):
		return wrapError(Undefined, err)
	case errors.Is(err, datamap.ErrSchemaMismatch):
		return wrapError(TypeError, err)
	}
	return wrapError(Store, err)
}

// mapOperands evaluates the key and, when present, the value argument of a
// map operation on the current contract.
func (vm *VM) mapOperands(args []*ast.Expr, sc scope.FrameID, n int) (string, []value.Value, error) {
	if err := expectArgs(args, n); err != nil {
		return "", nil, err
	}
	name, err := atomArg(args[0])
	if err != nil {
		return "", nil, err
	}
	vals, err := vm.evalAll(args[1:], sc)
	if err != nil {
		return "", nil, err
	}
	return name, vals, nil
}

// (fetch-entry map key)
func evalFetchEntry(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	name, vals, err := vm.mapOperands(args, sc, 2)
	if err != nil {
		return value.Value{}, err
	}
	return vm.fetch(vm.frame().Contract.Name, name, vals[0])
}

// (fetch-contract-entry contract map key)
func evalFetchContractEntry(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	if err := expectArgs(args, 3); err != nil {
		return value.Value{}, err
	}
	contractName, err := atomArg(args[0])
	if err != nil {
		return value.Value{}, err
	}
	owner, err := vm.resolveContract(contractName)
	if err != nil {
		return value.Value{}, err
	}
	name, vals, err := vm.mapOperands(args[1:], sc, 2)
	if err != nil {
		return value.Value{}, err
	}
	return vm.fetch(owner.Name, name, vals[0])
}

func (vm *VM) fetch(owner, name string, key value.Value) (value.Value, error) {
	view, err := vm.mapView()
	if err != nil {
		return value.Value{}, err
	}
	v, err := view.Fetch(vm.ctx, owner, name, key)
	if err != nil {
		return value.Value{}, storeError(err)
	}
	return v, nil
}

// (set-entry! map key value)
func evalSetEntry(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	name, vals, err := vm.mapOperands(args, sc, 3)
	if err != nil {
		return value.Value{}, err
	}
	view, err := vm.mapView()
	if err != nil {
		return value.Value{}, err
	}
	if err := view.Set(vm.ctx, vm.frame().Contract.Name, name, vals[0], vals[1]); err != nil {
		return value.Value{}, storeError(err)
	}
	return value.Void(), nil
}

// (insert-entry! map key value) writes only if key is absent.
func evalInsertEntry(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	name, vals, err := vm.mapOperands(args, sc, 3)
	if err != nil {
		return value.Value{}, err
	}
	view, err := vm.mapView()
	if err != nil {
		return value.Value{}, err
	}
	inserted, err := view.Insert(vm.ctx, vm.frame().Contract.Name, name, vals[0], vals[1])
	if err != nil {
		return value.Value{}, storeError(err)
	}
	return value.Bool(inserted), nil
}

// (delete-entry! map key) reports whether an entry existed.
func evalDeleteEntry(vm *VM, args []*ast.Expr, sc scope.FrameID) (value.Value, error) {
	name, vals, err := vm.mapOperands(args, sc, 2)
	if err != nil {
		return value.Value{}, err
	}
	view, err := vm.mapView()
	if err != nil {
		return value.Value{}, err
	}
	existed, err := view.Delete(vm.ctx, vm.frame().Contract.Name, name, vals[0])
	if err != nil {
		return value.Value{}, storeError(err)
	}
	return value.Bool(existed), nil
}
