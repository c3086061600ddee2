// Package contract holds checked contract definitions and the registry that
// the checker and the evaluator consult for cross-contract calls.
package contract

import (
	"fmt"

	"covenant/internal/ast"
	"covenant/internal/types"
)

type Visibility int

const (
	Private Visibility = iota
	Public
	ReadOnly
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Public:
		return "public"
	case ReadOnly:
		return "read-only"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// DefinedFunction is a user function. It is immutable once added to a
// Contract.
type DefinedFunction struct {
	Name       string
	Visibility Visibility
	Args       []types.FunctionArg
	Body       *ast.Expr
	Type       *types.FixedFunction
	// Writes is set when the body, or anything it calls, mutates a map.
	Writes bool
}

// Callable reports whether other contracts may invoke f.
func (f *DefinedFunction) Callable() bool {
	return f.Visibility == Public || f.Visibility == ReadOnly
}

// ParamNames returns the parameter names in declaration order.
func (f *DefinedFunction) ParamNames() []string {
	names := make([]string, len(f.Args))
	for i, a := range f.Args {
		names[i] = a.Name
	}
	return names
}

// MapSchema is the fixed key and value shape of one named map.
type MapSchema struct {
	Name  string
	Key   *types.Tuple
	Value *types.Tuple
}

// Contract is the checked form of one source unit.
type Contract struct {
	Name string
	// TopLevel are the non-definition expressions, evaluated in order when
	// the contract is deployed.
	TopLevel []*ast.Expr
	Types    *types.TypeMap

	functions map[string]*DefinedFunction
	funcOrder []string
	maps      map[string]*MapSchema
	mapOrder  []string
}

func New(name string) *Contract {
	return &Contract{
		Name:      name,
		Types:     types.NewTypeMap(),
		functions: make(map[string]*DefinedFunction),
		maps:      make(map[string]*MapSchema),
	}
}

// HasName reports whether name is taken by a function or a map.
func (c *Contract) HasName(name string) bool {
	_, fn := c.functions[name]
	_, m := c.maps[name]
	return fn || m
}

func (c *Contract) AddFunction(f *DefinedFunction) error {
	if c.HasName(f.Name) {
		return fmt.Errorf("contract %s: name %q already defined", c.Name, f.Name)
	}
	c.functions[f.Name] = f
	c.funcOrder = append(c.funcOrder, f.Name)
	return nil
}

func (c *Contract) AddMap(m *MapSchema) error {
	if c.HasName(m.Name) {
		return fmt.Errorf("contract %s: name %q already defined", c.Name, m.Name)
	}
	c.maps[m.Name] = m
	c.mapOrder = append(c.mapOrder, m.Name)
	return nil
}

func (c *Contract) Function(name string) (*DefinedFunction, bool) {
	f, ok := c.functions[name]
	return f, ok
}

func (c *Contract) Map(name string) (*MapSchema, bool) {
	m, ok := c.maps[name]
	return m, ok
}

// Functions returns the functions in definition order.
func (c *Contract) Functions() []*DefinedFunction {
	out := make([]*DefinedFunction, len(c.funcOrder))
	for i, name := range c.funcOrder {
		out[i] = c.functions[name]
	}
	return out
}

// Maps returns the map schemas in definition order.
func (c *Contract) Maps() []*MapSchema {
	out := make([]*MapSchema, len(c.mapOrder))
	for i, name := range c.mapOrder {
		out[i] = c.maps[name]
	}
	return out
}
