package garter

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/garterdb/garter/internal/sqlgen"
)

// DBTX is the storage contract every statement ultimately executes
// against. *sql.DB and *sql.Tx both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Database is a registry of tables over one engine connection. Opening a
// database introspects the engine catalog so every existing table, column,
// and foreign key is immediately addressable.
type Database struct {
	conn    *sql.DB
	exec    DBTX
	tables  map[string]*Table
	order   []string
	logger  *log.Logger
	verbose bool
}

// Option configures a Database at open time.
type Option func(*Database)

// Verbose logs every executed statement with its parameter bindings.
func Verbose() Option {
	return func(db *Database) { db.verbose = true }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(db *Database) { db.logger = l }
}

// Open opens (or creates) the database file at path and loads its schema.
// Use ":memory:" for an in-memory database. The caller must register a
// driver under the name "sqlite", typically by blank-importing
// modernc.org/sqlite.
func Open(path string, opts ...Option) (*Database, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db, err := OpenDB(conn, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB wraps an already-open handle and loads its schema. The caller
// retains ownership of conn unless it also calls Close.
func OpenDB(conn *sql.DB, opts ...Option) (*Database, error) {
	db := &Database{
		conn:   conn,
		exec:   conn,
		tables: map[string]*Table{},
		logger: log.New(os.Stderr, "[garter] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.loadSchema(context.Background()); err != nil {
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *Database) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying handle for raw access.
func (db *Database) Conn() *sql.DB { return db.conn }

// loadSchema registers a Table for every user table in the engine catalog.
func (db *Database) loadSchema(ctx context.Context) error {
	rows, err := db.exec.QueryContext(ctx,
		"SELECT name FROM sqlite_schema WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range names {
		db.register(newTable(name, db))
	}
	for _, name := range names {
		if err := db.tables[name].refresh(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) register(t *Table) {
	if _, exists := db.tables[t.name]; !exists {
		db.order = append(db.order, t.name)
	}
	db.tables[t.name] = t
}

// Tables returns every registered table in registration order.
func (db *Database) Tables() []*Table {
	out := make([]*Table, 0, len(db.order))
	for _, name := range db.order {
		out = append(out, db.tables[name])
	}
	return out
}

// T returns the named table, or nil when it is not registered. Prefer
// TableByName when the name may be wrong.
func (db *Database) T(name string) *Table {
	return db.tables[name]
}

// TableByName returns the named table or ErrUnknownTable.
func (db *Database) TableByName(name string) (*Table, error) {
	if t, ok := db.tables[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

// ColumnByRef resolves a qualified reference like "users.id" or
// "users(id)" to its column.
func (db *Database) ColumnByRef(ref string) (*Column, error) {
	tableName, colName, err := sqlgen.ParseColumnRef(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, ref)
	}
	t, err := db.TableByName(tableName)
	if err != nil {
		return nil, err
	}
	return t.Column(colName)
}

// CreateTable renders the definition as CREATE TABLE DDL, executes it, and
// returns the registered table with metadata loaded from the engine.
func (db *Database) CreateTable(ctx context.Context, name string, def *TableBuilder) (*Table, error) {
	td, err := def.def(name)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecStatement(ctx, td.CreateSQL(), nil); err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	t := newTable(name, db)
	db.register(t)
	if err := t.refresh(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// DropTable drops the named table and removes it from the registry.
func (db *Database) DropTable(ctx context.Context, name string) error {
	if _, err := db.TableByName(name); err != nil {
		return err
	}
	if _, err := db.ExecStatement(ctx, "DROP TABLE "+name, nil); err != nil {
		return err
	}
	if t := db.tables[name]; t != nil {
		t.db = nil
	}
	delete(db.tables, name)
	for i, n := range db.order {
		if n == name {
			db.order = append(db.order[:i], db.order[i+1:]...)
			break
		}
	}
	return nil
}

// Execute runs a statement expected to return rows. Parameters bind by
// placeholder name.
func (db *Database) Execute(ctx context.Context, stmt string, params map[string]any) (*sql.Rows, error) {
	db.logStatement(stmt, params)
	return db.exec.QueryContext(ctx, stmt, namedArgs(params)...)
}

// ExecStatement runs a statement for its side effects.
func (db *Database) ExecStatement(ctx context.Context, stmt string, params map[string]any) (sql.Result, error) {
	db.logStatement(stmt, params)
	return db.exec.ExecContext(ctx, stmt, namedArgs(params)...)
}

// ExecuteMany prepares the statement once and runs it for every row inside
// a single transaction, rolling back on the first failure.
func (db *Database) ExecuteMany(ctx context.Context, stmt string, rows [][]any) error {
	db.logStatement(stmt, nil)
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		tx.Rollback()
		return err
	}
	for i, row := range rows {
		if _, err := prepared.ExecContext(ctx, row...); err != nil {
			prepared.Close()
			tx.Rollback()
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	prepared.Close()
	return tx.Commit()
}

func (db *Database) logStatement(stmt string, params map[string]any) {
	if !db.verbose {
		return
	}
	flat := strings.Join(strings.Fields(stmt), " ")
	if len(params) == 0 {
		db.logger.Printf("execute: %s", flat)
		return
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf(":%s=%v", k, params[k])
	}
	db.logger.Printf("execute: %s [%s]", flat, strings.Join(pairs, " "))
}

// namedArgs converts a placeholder map to driver named arguments in sorted
// key order.
func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = sql.Named(k, params[k])
	}
	return args
}
