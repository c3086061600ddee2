package types

import (
	"fmt"

	"covenant/internal/ast"
)

// TypeMap records the type computed for each checked expression node. Name
// tokens such as map names, field names and binding identifiers are
// recorded as NoType. A node's entry is written once.
type TypeMap struct {
	entries map[ast.ID]TypeSignature
}

func NewTypeMap() *TypeMap {
	return &TypeMap{entries: make(map[ast.ID]TypeSignature)}
}

// Set records t for e. Recording a different type for the same node is an
// error.
func (m *TypeMap) Set(e *ast.Expr, t TypeSignature) error {
	if prev, ok := m.entries[e.ID]; ok {
		if !Equal(prev, t) {
			return fmt.Errorf("node %d already typed %s, cannot retype as %s", e.ID, prev, t)
		}
		return nil
	}
	m.entries[e.ID] = t
	return nil
}

// Get returns the recorded type of e.
func (m *TypeMap) Get(e *ast.Expr) (TypeSignature, bool) {
	t, ok := m.entries[e.ID]
	return t, ok
}

// Len reports how many nodes are typed.
func (m *TypeMap) Len() int { return len(m.entries) }
