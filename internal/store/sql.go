package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const tableName = "covenant_entries"

// dialect captures the few statements that differ between engines.
type dialect struct {
	name      string
	createSQL string
	getSQL    string
	putSQL    string
	deleteSQL string
}

var sqliteDialect = dialect{
	name:      "sqlite",
	createSQL: "CREATE TABLE IF NOT EXISTS " + tableName + " (k BLOB PRIMARY KEY, v BLOB NOT NULL)",
	getSQL:    "SELECT v FROM " + tableName + " WHERE k = ?",
	putSQL:    "INSERT INTO " + tableName + " (k, v) VALUES (?, ?) ON CONFLICT (k) DO UPDATE SET v = excluded.v",
	deleteSQL: "DELETE FROM " + tableName + " WHERE k = ?",
}

var postgresDialect = dialect{
	name:      "postgres",
	createSQL: "CREATE TABLE IF NOT EXISTS " + tableName + " (k BYTEA PRIMARY KEY, v BYTEA NOT NULL)",
	getSQL:    "SELECT v FROM " + tableName + " WHERE k = $1",
	putSQL:    "INSERT INTO " + tableName + " (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v",
	deleteSQL: "DELETE FROM " + tableName + " WHERE k = $1",
}

// SQL stores entries in one table of a database/sql database.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating if needed) a SQLite database file. Use
// ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("store: sqlite needs a dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// A :memory: database exists per connection, and SQLite allows a
	// single writer anyway.
	db.SetMaxOpenConns(1)
	return newSQL(ctx, db, sqliteDialect)
}

// OpenPostgres connects to PostgreSQL with a lib/pq connection string.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("store: postgres needs a dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	return newSQL(ctx, db, postgresDialect)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect %s: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, d.createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create %s table: %w", d.name, err)
	}
	return &SQL{db: db, dialect: d}, nil
}

// Driver names the SQL engine in use.
func (s *SQL) Driver() string { return s.dialect.name }

func (s *SQL) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	return get(ctx, s.db, s.dialect, key)
}

func (s *SQL) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin: %w", err)
	}
	return &sqlTx{tx: tx, dialect: s.dialect}, nil
}

func (s *SQL) Close() error { return s.db.Close() }

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func get(ctx context.Context, q queryer, d dialect, key []byte) ([]byte, bool, error) {
	var v []byte
	err := q.QueryRowContext(ctx, d.getSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get: %w", err)
	}
	return v, true, nil
}

type sqlTx struct {
	tx      *sql.Tx
	dialect dialect
}

func (t *sqlTx) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	return get(ctx, t.tx, t.dialect, key)
}

func (t *sqlTx) Put(ctx context.Context, key, value []byte) error {
	if _, err := t.tx.ExecContext(ctx, t.dialect.putSQL, key, value); err != nil {
		return fmt.Errorf("store: put: %w", err)
	}
	return nil
}

func (t *sqlTx) Delete(ctx context.Context, key []byte) (bool, error) {
	res, err := t.tx.ExecContext(ctx, t.dialect.deleteSQL, key)
	if err != nil {
		return false, fmt.Errorf("store: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: delete: %w", err)
	}
	return n > 0, nil
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return fmt.Errorf("store: rollback: %w", err)
	}
	return nil
}
