// Package datamap implements schema-typed persistent maps over a
// store.Backend. Each map belongs to a contract, has one fixed key and
// value tuple type, and never sees the entries of another map.
package datamap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"covenant/internal/store"
	"covenant/internal/types"
	"covenant/internal/value"
)

var (
	ErrNoSuchMap      = errors.New("no such map")
	ErrMapExists      = errors.New("map already defined")
	ErrSchemaMismatch = errors.New("tuple does not match map schema")
)

// Schema is the key and value shape of a map.
type Schema struct {
	Key   *types.Tuple
	Value *types.Tuple
}

// Store registers map schemas. Entry operations go through a View bound to
// a backend, usually the transaction of the current evaluation.
type Store struct {
	mu      sync.RWMutex
	schemas map[string]Schema
}

func New() *Store {
	return &Store{schemas: make(map[string]Schema)}
}

func schemaKey(contract, name string) string {
	return contract + "\x00" + name
}

// DefineMap registers a schema once per contract and map name.
func (s *Store) DefineMap(contract, name string, key, val *types.Tuple) error {
	if key == nil || val == nil {
		return fmt.Errorf("map %s.%s: key and value types are required", contract, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := schemaKey(contract, name)
	if _, exists := s.schemas[k]; exists {
		return fmt.Errorf("%w: %s.%s", ErrMapExists, contract, name)
	}
	s.schemas[k] = Schema{Key: key, Value: val}
	return nil
}

// Schema returns the registered schema of a map.
func (s *Store) Schema(contract, name string) (Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.schemas[schemaKey(contract, name)]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s.%s", ErrNoSuchMap, contract, name)
	}
	return schema, nil
}

// Forget drops every schema of contract. Entries already written are not
// touched; a failed deployment uses this before its transaction rolls back.
func (s *Store) Forget(contract string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := contract + "\x00"
	for k := range s.schemas {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(s.schemas, k)
		}
	}
}

// View binds the store to a backend.
func (s *Store) View(b store.Backend) *View {
	return &View{maps: s, backend: b}
}

// EntryKey is the backend key of one map entry:
// contract 0x00 map 0x00 canonical(key).
func EntryKey(contract, name string, key value.Value) []byte {
	var buf bytes.Buffer
	buf.WriteString(contract)
	buf.WriteByte(0)
	buf.WriteString(name)
	buf.WriteByte(0)
	buf.Write(value.Encode(key))
	return buf.Bytes()
}

// View performs entry operations against one backend.
type View struct {
	maps    *Store
	backend store.Backend
}

func conforms(expected *types.Tuple, v value.Value) error {
	if v.Kind != value.KindTuple || !types.Admits(expected, value.TypeOf(v)) {
		return fmt.Errorf("%w: expected %s, got %s", ErrSchemaMismatch, expected, v)
	}
	return nil
}

func (v *View) prepare(contract, name string, key value.Value) (Schema, []byte, error) {
	schema, err := v.maps.Schema(contract, name)
	if err != nil {
		return Schema{}, nil, err
	}
	if err := conforms(schema.Key, key); err != nil {
		return Schema{}, nil, err
	}
	return schema, EntryKey(contract, name, key), nil
}

// Fetch returns (some valueTuple) or none.
func (v *View) Fetch(ctx context.Context, contract, name string, key value.Value) (value.Value, error) {
	schema, k, err := v.prepare(contract, name, key)
	if err != nil {
		return value.Value{}, err
	}
	data, ok, err := v.backend.Get(ctx, k)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.None(), nil
	}
	entry, err := value.Decode(data, schema.Value)
	if err != nil {
		return value.Value{}, fmt.Errorf("map %s.%s: %w", contract, name, err)
	}
	return value.Some(entry), nil
}

// Set writes the entry unconditionally.
func (v *View) Set(ctx context.Context, contract, name string, key, val value.Value) error {
	schema, k, err := v.prepare(contract, name, key)
	if err != nil {
		return err
	}
	if err := conforms(schema.Value, val); err != nil {
		return err
	}
	return v.backend.Put(ctx, k, value.Encode(val))
}

// Insert writes the entry only if the key is absent and reports whether it
// did.
func (v *View) Insert(ctx context.Context, contract, name string, key, val value.Value) (bool, error) {
	schema, k, err := v.prepare(contract, name, key)
	if err != nil {
		return false, err
	}
	if err := conforms(schema.Value, val); err != nil {
		return false, err
	}
	_, exists, err := v.backend.Get(ctx, k)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := v.backend.Put(ctx, k, value.Encode(val)); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the entry and reports whether it existed.
func (v *View) Delete(ctx context.Context, contract, name string, key value.Value) (bool, error) {
	_, k, err := v.prepare(contract, name, key)
	if err != nil {
		return false, err
	}
	return v.backend.Delete(ctx, k)
}
