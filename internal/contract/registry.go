package contract

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrContractExists = errors.New("contract already registered")

// Registry holds deployed contracts. The checker resolves contract-call!
// signatures through it and the evaluator resolves the callee bodies.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]*Contract
}

func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]*Contract)}
}

// Register adds c. Names are unique for the lifetime of the registry.
func (r *Registry) Register(c *Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contracts[c.Name]; exists {
		return fmt.Errorf("%w: %s", ErrContractExists, c.Name)
	}
	r.contracts[c.Name] = c
	return nil
}

// Contract looks up a registered contract by name.
func (r *Registry) Contract(name string) (*Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[name]
	return c, ok
}

// Names returns the registered contract names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.contracts))
	for name := range r.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
