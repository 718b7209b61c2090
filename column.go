package garter

import (
	"context"
	"fmt"
	"strings"
)

// Column is a named, typed reference into a Table. It renders as
// "table.name" and supports the full expression operator set, so conditions
// read naturally:
//
//	users.C("last_name").Eq("Doe").And(users.C("age").Ge(21))
//
// Metadata (declared type, nullability, primary-key flag, default) comes
// from the engine's table_info introspection, refreshed whenever the table
// is attached or altered. A column's identity is (table, name).
type Column struct {
	name        string
	table       *Table
	constraints string

	// introspected metadata, valid once loaded is set
	loaded   bool
	cid      int
	declType string
	notNull  bool
	dflt     any
	pk       bool

	// set by Table.C for names with no declaration; expressions built from
	// such a column carry ErrUnknownColumn
	unknown bool
}

// Name returns the column's name without the table qualifier.
func (c *Column) Name() string { return c.name }

// Table returns the owning table.
func (c *Column) Table() *Table { return c.table }

// Constraints returns the raw declaration text, e.g. "TEXT NOT NULL".
func (c *Column) Constraints() string { return c.constraints }

// String renders the qualified reference "table.column".
func (c *Column) String() string {
	if c.table == nil {
		return c.name
	}
	return c.table.Name() + "." + c.name
}

// DeclaredType returns the declared SQL type, preferring engine
// introspection over the declaration text.
func (c *Column) DeclaredType() string {
	if c.loaded {
		return c.declType
	}
	fields := strings.Fields(c.constraints)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NotNull reports whether the column carries a NOT NULL constraint.
func (c *Column) NotNull() bool { return c.notNull }

// PrimaryKey reports whether the column is part of the primary key.
func (c *Column) PrimaryKey() bool { return c.pk }

// Default returns the column's default value, or nil.
func (c *Column) Default() any { return c.dflt }

// ForeignKey returns the column this one references through a declared
// foreign key, or nil when there is none. Deferred references ("users.id"
// against a table not yet loaded) resolve on first call.
func (c *Column) ForeignKey() (*Column, error) {
	if c.table == nil {
		return nil, nil
	}
	return c.table.resolveForeignKey(c.name)
}

func (c *Column) sqlType() (sqlType, error) {
	dt := strings.ToUpper(c.DeclaredType())
	if t, ok := columnTypes[dt]; ok {
		return t, nil
	}
	return typeUnknown, fmt.Errorf("%w: %q on %s", ErrUnknownColumnType, c.DeclaredType(), c)
}

// COMPARISONS

// Eq renders "col = other".
func (c *Column) Eq(other any) *Expr { return NewExpr(c, "=", other) }

// Ne renders "col <> other".
func (c *Column) Ne(other any) *Expr { return NewExpr(c, "<>", other) }

// Gt renders "col > other".
func (c *Column) Gt(other any) *Expr { return NewExpr(c, ">", other) }

// Lt renders "col < other".
func (c *Column) Lt(other any) *Expr { return NewExpr(c, "<", other) }

// Ge renders "col >= other".
func (c *Column) Ge(other any) *Expr { return NewExpr(c, ">=", other) }

// Le renders "col <= other".
func (c *Column) Le(other any) *Expr { return NewExpr(c, "<=", other) }

// Is renders "col IS other"; use Is(nil) for IS NULL.
func (c *Column) Is(other any) *Expr { return NewExpr(c, "IS", other) }

// ARITHMETIC AND PATTERNS

// Add renders "col + other", or "col || other" for text operands.
func (c *Column) Add(other any) *Expr { return addExpr(c, other) }

// Sub renders "col - other".
func (c *Column) Sub(other any) *Expr { return NewExpr(c, "-", other) }

// Mul renders "col * other".
func (c *Column) Mul(other any) *Expr { return NewExpr(c, "*", other) }

// Div renders "col / other".
func (c *Column) Div(other any) *Expr { return NewExpr(c, "/", other) }

// Mod renders "col % other", or "col LIKE other" for a text column.
func (c *Column) Mod(other any) *Expr { return modExpr(c, other) }

// Shr renders "col >> other".
func (c *Column) Shr(other any) *Expr { return NewExpr(c, ">>", other) }

// Shl renders "col << other".
func (c *Column) Shl(other any) *Expr { return NewExpr(c, "<<", other) }

// In renders "col IN (v1, v2, ...)" or "col IN (SELECT ...)".
func (c *Column) In(vals ...any) *Expr { return NewExpr(c).In(vals...) }

// Between renders "col BETWEEN lo AND hi".
func (c *Column) Between(lo, hi any) *Expr {
	return NewExpr(c).Between(lo, hi)
}

// Like renders "col LIKE pattern".
func (c *Column) Like(pattern any) *Expr { return NewExpr(c, "LIKE", pattern) }

// Glob renders "col GLOB pattern".
func (c *Column) Glob(pattern any) *Expr { return NewExpr(c, "GLOB", pattern) }

// StartsWith renders "col LIKE 'prefix%'".
func (c *Column) StartsWith(prefix string) *Expr { return c.Like(prefix + "%") }

// EndsWith renders "col LIKE '%suffix'".
func (c *Column) EndsWith(suffix string) *Expr { return c.Like("%" + suffix) }

// ORDERING

// Desc marks the column for descending order in ORDER BY clauses.
func (c *Column) Desc() *Expr { return NewExpr(c, "DESC") }

// Asc marks the column for ascending order in ORDER BY clauses.
func (c *Column) Asc() *Expr { return NewExpr(c, "ASC") }

// Distinct marks the column with the DISTINCT prefix for use inside
// aggregate calls: Count(col.Distinct()) renders COUNT(DISTINCT col).
func (c *Column) Distinct() *Expr { return NewExpr(c).Distinct() }

// FUNCTION SHORTCUTS

// Count renders COUNT(col).
func (c *Column) Count() *Expr { return Func("COUNT", c) }

// Max renders MAX(col).
func (c *Column) Max() *Expr { return Func("MAX", c) }

// Min renders MIN(col).
func (c *Column) Min() *Expr { return Func("MIN", c) }

// Avg renders AVG(col).
func (c *Column) Avg() *Expr { return Func("AVG", c) }

// Sum renders SUM(col).
func (c *Column) Sum() *Expr { return Func("SUM", c) }

// Abs renders ABS(col).
func (c *Column) Abs() *Expr { return Func("ABS", c) }

// Length renders LENGTH(col).
func (c *Column) Length() *Expr { return Func("LENGTH", c) }

// Lower renders LOWER(col).
func (c *Column) Lower() *Expr { return Func("LOWER", c) }

// Upper renders UPPER(col).
func (c *Column) Upper() *Expr { return Func("UPPER", c) }

// Replace renders REPLACE(col, find, repl).
func (c *Column) Replace(find, repl any) *Expr {
	return Func("REPLACE", c, find, repl)
}

// Substr renders SUBSTR(col, start, length).
func (c *Column) Substr(start, length int) *Expr {
	return Func("SUBSTR", c, start, length)
}

// CONVENIENCE STATEMENTS

// Select returns a Select statement targeting only this column.
func (c *Column) Select() *SelectStmt { return c.table.Select(c) }

// FetchOne builds and executes a Select for this column and returns the
// single resulting value, or nil when no row matches.
func (c *Column) FetchOne(ctx context.Context, where ...*Expr) (any, error) {
	stmt := c.Select()
	if len(where) > 0 {
		stmt = stmt.Where(where[0])
	}
	rows, err := stmt.Limit(1).Query(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	var v any
	if err := rows.Scan(&v); err != nil {
		return nil, err
	}
	return v, rows.Err()
}

// FetchAll builds and executes a Select for this column and returns the
// resulting values.
func (c *Column) FetchAll(ctx context.Context, where ...*Expr) ([]any, error) {
	stmt := c.Select()
	if len(where) > 0 {
		stmt = stmt.Where(where[0])
	}
	rows, err := stmt.Query(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update returns an Update statement setting this column's value.
func (c *Column) Update(value any) *UpdateStmt {
	return c.table.Update(map[string]any{c.name: value})
}
