// Package engine ties the pipeline together: a source is parsed, checked,
// registered, and evaluated inside one store transaction. Evaluations are
// serialized; each commits on success and rolls back on any error.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"covenant/internal/ast"
	"covenant/internal/checker"
	"covenant/internal/contract"
	"covenant/internal/datamap"
	"covenant/internal/parser"
	"covenant/internal/runtime"
	"covenant/internal/store"
	"covenant/internal/value"
	"covenant/internal/vm"
)

var ErrNoSuchContract = errors.New("no such contract")

// Options configure an Engine. Zero values select defaults.
type Options struct {
	Env *runtime.Env
	// Logger receives deployment and transaction outcomes.
	Logger *log.Logger
}

type Engine struct {
	mu        sync.Mutex
	store     store.Store
	contracts *contract.Registry
	maps      *datamap.Store
	env       *runtime.Env
	logger    *log.Logger
}

func New(st store.Store, opts Options) *Engine {
	env := opts.Env
	if env == nil {
		env = runtime.DefaultEnv()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		store:     st,
		contracts: contract.NewRegistry(),
		maps:      datamap.New(),
		env:       env,
		logger:    logger,
	}
}

// Contracts returns the registry of deployed contracts.
func (e *Engine) Contracts() *contract.Registry {
	return e.contracts
}

// Deploy parses src and deploys it as contract name. See DeployProgram.
func (e *Engine) Deploy(ctx context.Context, sender, name, src string) ([]value.Value, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", name, err)
	}
	return e.DeployProgram(ctx, sender, name, prog)
}

// DeployProgram checks prog, defines its maps and evaluates its top-level
// expressions with sender as tx-sender. The contract is registered only if
// every expression succeeds; otherwise nothing of it remains.
func (e *Engine) DeployProgram(ctx context.Context, sender, name string, prog *ast.Program) ([]value.Value, error) {
	if err := contract.ValidSender(sender); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := checker.CheckContract(e.contracts, name, prog)
	if err != nil {
		return nil, err
	}
	if err := e.defineMaps(c, c.Maps()); err != nil {
		return nil, err
	}

	var results []value.Value
	err = e.transact(ctx, "deploy "+name, func(m *vm.VM) error {
		vals, evalErr := evalAll(ctx, m, c, sender, c.TopLevel)
		results = vals
		return evalErr
	})
	if err == nil {
		err = e.contracts.Register(c)
	}
	if err != nil {
		e.maps.Forget(name)
		return nil, err
	}
	e.logger.Printf("deployed %s: %d functions, %d maps", name, len(c.Functions()), len(c.Maps()))
	return results, nil
}

func (e *Engine) defineMaps(c *contract.Contract, schemas []*contract.MapSchema) error {
	for _, m := range schemas {
		if err := e.maps.DefineMap(c.Name, m.Name, m.Key, m.Value); err != nil {
			e.maps.Forget(c.Name)
			return err
		}
	}
	return nil
}

func evalAll(ctx context.Context, m *vm.VM, c *contract.Contract, sender string, exprs []*ast.Expr) ([]value.Value, error) {
	results := make([]value.Value, 0, len(exprs))
	for _, expr := range exprs {
		v, err := m.Eval(ctx, c, sender, expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", expr.Pos, err)
		}
		results = append(results, v)
	}
	return results, nil
}

// Call invokes a public or read-only function of a deployed contract.
func (e *Engine) Call(ctx context.Context, sender, contractName, fn string, args []value.Value) (value.Value, error) {
	if err := contract.ValidSender(sender); err != nil {
		return value.Value{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.contracts.Contract(contractName)
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", ErrNoSuchContract, contractName)
	}
	var result value.Value
	err := e.transact(ctx, fmt.Sprintf("call %s.%s", contractName, fn), func(m *vm.VM) error {
		var err error
		result, err = m.Call(ctx, c, sender, fn, args)
		return err
	})
	return result, err
}

// transact runs fn against a fresh transaction.
func (e *Engine) transact(ctx context.Context, what string, fn func(m *vm.VM) error) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	m := vm.NewVM(e.contracts, e.maps.View(tx), e.env)
	if err := fn(m); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.logger.Printf("%s: rollback failed: %v", what, rbErr)
		}
		e.logger.Printf("%s: rolled back: %v", what, err)
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", what, err)
	}
	e.logger.Printf("%s: committed", what)
	return nil
}
