// Package store is the narrow key/value boundary behind persistent maps.
// Keys and values are opaque bytes; every mutation happens inside a
// transaction that either commits as a whole or leaves no trace.
package store

import (
	"context"
	"errors"
)

// ErrTxDone is returned when a finished transaction is used.
var ErrTxDone = errors.New("store: transaction already committed or rolled back")

// Backend reads and writes single entries.
type Backend interface {
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	Put(ctx context.Context, key, value []byte) error
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key []byte) (bool, error)
}

// Tx is a Backend whose writes become visible on Commit.
type Tx interface {
	Backend
	Commit() error
	Rollback() error
}

// Store opens transactions over persisted entries.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	// Get reads committed state. Backends with a single connection block
	// here while a transaction is open.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	Close() error
}

// Open returns a store for driver: "memory", "sqlite" or "postgres".
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	}
	return nil, errors.New("store: unknown driver " + driver)
}
