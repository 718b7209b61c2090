package garter

import (
	"context"
	"fmt"

	"github.com/garterdb/garter/internal/sqlgen"
)

// TableBuilder accumulates a table definition before it is created in a
// database. Column order is declaration order and drives the rendered DDL.
//
//	posts, err := db.CreateTable(ctx, "posts", garter.DefineTable().
//		Column("user_id", "INTEGER NOT NULL").
//		Column("text", "TEXT").
//		ForeignKey("user_id", users.C("id")))
type TableBuilder struct {
	cols []sqlgen.ColumnDef
	fks  []builderFK
	pk   []string
}

type builderFK struct {
	local string
	col   *Column // nil when the target was given as a string reference
	ref   string
}

// DefineTable starts an empty table definition.
func DefineTable() *TableBuilder {
	return &TableBuilder{}
}

// Column appends a column declaration. Constraints is the raw SQL text
// following the name, e.g. "INTEGER PRIMARY KEY" or "TEXT NOT NULL".
func (b *TableBuilder) Column(name, constraints string) *TableBuilder {
	b.cols = append(b.cols, sqlgen.ColumnDef{Name: name, Constraints: constraints})
	return b
}

// ForeignKey declares that the local column references another table's
// column. The target may be a *Column or a string like "users(id)" or
// "users.id"; string targets may name tables that do not exist yet and
// resolve lazily.
func (b *TableBuilder) ForeignKey(local string, target any) *TableBuilder {
	switch v := target.(type) {
	case *Column:
		b.fks = append(b.fks, builderFK{local: local, col: v})
	case string:
		b.fks = append(b.fks, builderFK{local: local, ref: v})
	}
	return b
}

// PrimaryKey declares a composite primary key over the named columns.
func (b *TableBuilder) PrimaryKey(cols ...string) *TableBuilder {
	b.pk = cols
	return b
}

func (b *TableBuilder) def(name string) (sqlgen.TableDef, error) {
	def := sqlgen.TableDef{
		Name:       name,
		Columns:    b.cols,
		PrimaryKey: b.pk,
	}
	for _, fk := range b.fks {
		if fk.col != nil {
			def.ForeignKeys = append(def.ForeignKeys, sqlgen.ForeignKeyDef{
				Column:    fk.local,
				RefTable:  fk.col.table.Name(),
				RefColumn: fk.col.Name(),
			})
			continue
		}
		refTable, refColumn, err := sqlgen.ParseColumnRef(fk.ref)
		if err != nil {
			return def, fmt.Errorf("%w: foreign key %s: %v", ErrUnknownColumn, fk.local, err)
		}
		def.ForeignKeys = append(def.ForeignKeys, sqlgen.ForeignKeyDef{
			Column:    fk.local,
			RefTable:  refTable,
			RefColumn: refColumn,
		})
	}
	return def, nil
}

// Table is a named collection of columns plus declared foreign-key edges,
// registered with a Database. It is the node type of the implicit-join
// graph: a statement built from this table can pull in any table reachable
// through foreign keys without explicit JOIN clauses.
//
// Tables are not safe for concurrent mutation; schema-altering calls
// (AddColumn, DropColumn) recompute the schema text, foreign-key map, and
// column metadata synchronously.
type Table struct {
	name   string
	db     *Database
	cols   map[string]*Column
	order  []string
	fks    map[string]*fkRef
	fkOrd  []string
	pk     []string
	schema string
}

type fkRef struct {
	col *Column // resolved target
	ref string  // deferred "table(column)" reference
}

func newTable(name string, db *Database) *Table {
	return &Table{
		name: name,
		db:   db,
		cols: map[string]*Column{},
		fks:  map[string]*fkRef{},
	}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// String renders the table as its name, as it appears in FROM clauses.
func (t *Table) String() string { return t.name }

// DB returns the owning database, or nil for a detached table.
func (t *Table) DB() *Database { return t.db }

// C returns the named column. Looking up an undeclared name does not fail
// here; the returned column is marked and any expression built from it
// carries ErrUnknownColumn, so the mistake surfaces before execution.
func (t *Table) C(name string) *Column {
	if col, ok := t.cols[name]; ok {
		return col
	}
	return &Column{name: name, table: t, unknown: true}
}

// Column returns the named column or ErrUnknownColumn.
func (t *Table) Column(name string) (*Column, error) {
	if col, ok := t.cols[name]; ok {
		return col, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, name)
}

// Columns returns the table's columns in declaration order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.cols[name])
	}
	return out
}

// Has reports whether the table declares the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Schema returns the table's CREATE TABLE text: the engine's copy when
// attached, otherwise one rendered from the in-memory definition.
func (t *Table) Schema() string {
	if t.schema != "" {
		return t.schema
	}
	return t.def().CreateSQL()
}

func (t *Table) def() sqlgen.TableDef {
	def := sqlgen.TableDef{Name: t.name, PrimaryKey: t.pk}
	for _, name := range t.order {
		def.Columns = append(def.Columns, sqlgen.ColumnDef{
			Name:        name,
			Constraints: t.cols[name].constraints,
		})
	}
	for _, local := range t.fkOrd {
		fk := t.fks[local]
		if fk.col != nil {
			def.ForeignKeys = append(def.ForeignKeys, sqlgen.ForeignKeyDef{
				Column:    local,
				RefTable:  fk.col.table.Name(),
				RefColumn: fk.col.Name(),
			})
		} else if refTable, refColumn, err := sqlgen.ParseColumnRef(fk.ref); err == nil {
			def.ForeignKeys = append(def.ForeignKeys, sqlgen.ForeignKeyDef{
				Column:    local,
				RefTable:  refTable,
				RefColumn: refColumn,
			})
		}
	}
	return def
}

func (t *Table) addColumn(name, constraints string) *Column {
	col := &Column{name: name, table: t, constraints: constraints}
	if _, exists := t.cols[name]; !exists {
		t.order = append(t.order, name)
	}
	t.cols[name] = col
	return col
}

func (t *Table) addForeignKey(local string, target *Column, ref string) {
	if _, exists := t.fks[local]; !exists {
		t.fkOrd = append(t.fkOrd, local)
	}
	t.fks[local] = &fkRef{col: target, ref: ref}
}

// resolveForeignKey returns the target column of the foreign key declared on
// the named local column, or nil when the column has none. Deferred string
// references resolve against the database registry on first use and are
// cached until the schema changes.
func (t *Table) resolveForeignKey(local string) (*Column, error) {
	fk, ok := t.fks[local]
	if !ok {
		return nil, nil
	}
	if fk.col != nil {
		return fk.col, nil
	}
	if t.db == nil {
		return nil, fmt.Errorf("%w: %s", ErrDetachedTable, t.name)
	}
	refTable, refColumn, err := sqlgen.ParseColumnRef(fk.ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, fk.ref)
	}
	target, err := t.db.TableByName(refTable)
	if err != nil {
		return nil, err
	}
	col, err := target.Column(refColumn)
	if err != nil {
		return nil, err
	}
	fk.col = col
	return col, nil
}

type fkEdge struct {
	local  *Column
	target *Column
}

// foreignKeyEdges returns the table's resolved foreign-key edges in
// declaration order.
func (t *Table) foreignKeyEdges() ([]fkEdge, error) {
	edges := make([]fkEdge, 0, len(t.fkOrd))
	for _, local := range t.fkOrd {
		target, err := t.resolveForeignKey(local)
		if err != nil {
			return nil, err
		}
		if target == nil {
			continue
		}
		localCol, err := t.Column(local)
		if err != nil {
			return nil, err
		}
		edges = append(edges, fkEdge{local: localCol, target: target})
	}
	return edges, nil
}

// refresh reloads the schema text, foreign keys, and column metadata from
// the engine. It runs on attach and after every schema alteration; there is
// no lazy caching to invalidate.
func (t *Table) refresh(ctx context.Context) error {
	if t.db == nil {
		return fmt.Errorf("%w: %s", ErrDetachedTable, t.name)
	}

	var schema string
	err := t.db.exec.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_schema WHERE type = 'table' AND name = ?", t.name,
	).Scan(&schema)
	if err != nil {
		return fmt.Errorf("loading schema for %s: %w", t.name, err)
	}
	t.schema = schema

	def, err := sqlgen.ParseCreateTable(schema)
	if err != nil {
		return err
	}
	t.fks = map[string]*fkRef{}
	t.fkOrd = nil
	for _, fk := range def.ForeignKeys {
		t.addForeignKey(fk.Column, nil, fk.RefTable+"("+fk.RefColumn+")")
	}
	t.pk = def.PrimaryKey
	for _, cd := range def.Columns {
		if col, ok := t.cols[cd.Name]; ok {
			col.constraints = cd.Constraints
		} else {
			t.addColumn(cd.Name, cd.Constraints)
		}
	}

	return t.loadColumnInfo(ctx)
}

// loadColumnInfo populates column metadata from PRAGMA table_info.
func (t *Table) loadColumnInfo(ctx context.Context) error {
	rows, err := t.db.exec.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", t.name))
	if err != nil {
		return fmt.Errorf("describing %s: %w", t.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     any
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return err
		}
		col, ok := t.cols[name]
		if !ok {
			col = t.addColumn(name, declType)
		}
		col.loaded = true
		col.cid = cid
		col.declType = declType
		col.notNull = notNull != 0
		col.dflt = dflt
		col.pk = pk != 0
	}
	return rows.Err()
}

// AddColumn alters the table with a new column and recomputes the cached
// schema and metadata.
func (t *Table) AddColumn(ctx context.Context, name, constraints string) error {
	if t.db == nil {
		return fmt.Errorf("%w: %s", ErrDetachedTable, t.name)
	}
	ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", t.name, name)
	if constraints != "" {
		ddl += " " + constraints
	}
	if _, err := t.db.ExecStatement(ctx, ddl, nil); err != nil {
		return err
	}
	t.addColumn(name, constraints)
	return t.refresh(ctx)
}

// DropColumn alters the table to remove a column and recomputes the cached
// schema and metadata.
func (t *Table) DropColumn(ctx context.Context, name string) error {
	if t.db == nil {
		return fmt.Errorf("%w: %s", ErrDetachedTable, t.name)
	}
	ddl := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", t.name, name)
	if _, err := t.db.ExecStatement(ctx, ddl, nil); err != nil {
		return err
	}
	delete(t.cols, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	if _, ok := t.fks[name]; ok {
		delete(t.fks, name)
		for i, n := range t.fkOrd {
			if n == name {
				t.fkOrd = append(t.fkOrd[:i], t.fkOrd[i+1:]...)
				break
			}
		}
	}
	return t.refresh(ctx)
}

// STATEMENT CONSTRUCTORS

// Select starts a Select statement from this table. With no arguments it
// selects *; otherwise cols may be columns, expressions, or column names.
func (t *Table) Select(cols ...any) *SelectStmt {
	return newSelect(t, cols)
}

// Insert starts an Insert statement for one row. Keys are column names;
// values may be scalars or expressions.
func (t *Table) Insert(row map[string]any) *InsertStmt {
	return newInsert(t, row)
}

// InsertMany starts a batched insert of rows over the named columns.
func (t *Table) InsertMany(cols []string, rows [][]any) *InsertManyStmt {
	return newInsertMany(t, cols, rows)
}

// Update starts an Update statement. Keys are column names (optionally
// qualified); values may be scalars or expressions.
func (t *Table) Update(updates map[string]any) *UpdateStmt {
	return newUpdate(t, updates)
}

// Delete starts a Delete statement for this table.
func (t *Table) Delete() *DeleteStmt {
	return newDelete(t)
}

// Count executes SELECT COUNT(*) with the optional condition and returns
// the result.
func (t *Table) Count(ctx context.Context, where ...*Expr) (int64, error) {
	stmt := t.Select(Count())
	if len(where) > 0 {
		stmt = stmt.Where(where[0])
	}
	rows, err := stmt.Query(ctx)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, rows.Err()
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, err
	}
	return n, rows.Err()
}

// FetchOne executes a Select and returns the first row's values, or nil
// when nothing matches.
func (t *Table) FetchOne(ctx context.Context, cols []any, where ...*Expr) ([]any, error) {
	stmt := t.Select(cols...)
	if len(where) > 0 {
		stmt = stmt.Where(where[0])
	}
	rowsets, err := fetchRows(ctx, stmt.Limit(1))
	if err != nil || len(rowsets) == 0 {
		return nil, err
	}
	return rowsets[0], nil
}

// FetchAll executes a Select and returns every matching row's values.
func (t *Table) FetchAll(ctx context.Context, cols []any, where ...*Expr) ([][]any, error) {
	stmt := t.Select(cols...)
	if len(where) > 0 {
		stmt = stmt.Where(where[0])
	}
	return fetchRows(ctx, stmt)
}

func fetchRows(ctx context.Context, stmt *SelectStmt) ([][]any, error) {
	rows, err := stmt.Query(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]any
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}
