package engine

import (
	"context"

	"covenant/internal/ast"
	"covenant/internal/checker"
	"covenant/internal/contract"
	"covenant/internal/parser"
	"covenant/internal/value"
	"covenant/internal/vm"
)

// Session evaluates input incrementally against one contract, as the REPL
// does. Definitions accepted earlier stay visible to later input.
type Session struct {
	engine  *Engine
	checker *checker.Checker
	sender  string
	lastID  ast.ID
}

// NewSession registers an empty contract called name and returns a session
// that grows it.
func (e *Engine) NewSession(name, sender string) (*Session, error) {
	if err := contract.ValidName(name); err != nil {
		return nil, err
	}
	if err := contract.ValidSender(sender); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	c := contract.New(name)
	if err := e.contracts.Register(c); err != nil {
		return nil, err
	}
	return &Session{engine: e, checker: checker.New(e.contracts, c), sender: sender}, nil
}

// Contract returns the session's contract.
func (s *Session) Contract() *contract.Contract {
	return s.checker.Contract()
}

// Eval checks every expression of src, then evaluates the non-definition
// ones in a single transaction. Definitions that passed checking are kept
// even when a later expression fails.
func (s *Session) Eval(ctx context.Context, src string) ([]value.Value, error) {
	prog, err := parser.ParseAfter(src, s.lastID)
	if err != nil {
		return nil, err
	}
	if id := prog.MaxID(); id > s.lastID {
		s.lastID = id
	}

	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	c := s.checker.Contract()
	var pending []*ast.Expr
	for _, expr := range prog.Exprs {
		maps, top := len(c.Maps()), len(c.TopLevel)
		if _, err := s.checker.Check(expr); err != nil {
			return nil, err
		}
		for _, m := range c.Maps()[maps:] {
			if err := e.maps.DefineMap(c.Name, m.Name, m.Key, m.Value); err != nil {
				return nil, err
			}
		}
		if len(c.TopLevel) > top {
			pending = append(pending, expr)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var results []value.Value
	err = e.transact(ctx, "eval "+c.Name, func(m *vm.VM) error {
		vals, evalErr := evalAll(ctx, m, c, s.sender, pending)
		results = vals
		return evalErr
	})
	return results, err
}
