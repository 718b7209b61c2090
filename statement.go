package garter

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/garterdb/garter/internal/sqlgen"
)

// Statement is any renderable SQL statement: a clause sequence plus the
// merged parameter bindings of every expression it holds. Statements also
// work as expression operands, so a Select can appear as a sub-select
// inside IN or EXISTS.
type Statement interface {
	SQL() (string, error)
	Params() map[string]any
}

// ConflictPolicy selects the INSERT OR <policy> behavior when a row
// violates a table constraint. The zero value leaves the engine default.
// Constant names carry the OR so they read as the rendered SQL and stay
// clear of the function constructors (OrReplace vs the REPLACE() builder).
type ConflictPolicy string

const (
	OrAbort    ConflictPolicy = "ABORT"
	OrFail     ConflictPolicy = "FAIL"
	OrIgnore   ConflictPolicy = "IGNORE"
	OrReplace  ConflictPolicy = "REPLACE"
	OrRollback ConflictPolicy = "ROLLBACK"
)

// updateFromAlias renames the update target when it re-enters the FROM list
// of its own UPDATE, so the target row and the joined row stay
// distinguishable in a self-join.
const updateFromAlias = "garter_src"

// stmtCore holds the fields shared by every statement variant and renders
// the common clause tail. Setter errors stick to the statement and surface
// from SQL or the execute methods, so chains stay fluent.
type stmtCore struct {
	table      *Table
	where      *Expr
	joins      []Join
	orderBy    []*Expr
	limit      int64
	hasLimit   bool
	offset     int64
	hasOffset  bool
	noAutoJoin bool
	err        error
}

func (c *stmtCore) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *stmtCore) addWhere(cond *Expr) {
	if cond == nil {
		return
	}
	if cond.Err() != nil {
		c.fail(cond.Err())
		return
	}
	if c.where == nil {
		c.where = cond
	} else {
		c.where = c.where.And(cond)
	}
}

func (c *stmtCore) addMatch(conds map[string]any) {
	keys := make([]string, 0, len(conds))
	for k := range conds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		col, err := c.resolveColumn(k)
		if err != nil {
			c.fail(err)
			return
		}
		c.addWhere(col.Eq(conds[k]))
	}
}

func (c *stmtCore) addJoin(table *Table, on *Expr) {
	if on != nil && on.Err() != nil {
		c.fail(on.Err())
		return
	}
	c.joins = append(c.joins, Join{Table: table, On: on})
}

func (c *stmtCore) addOrderBy(terms []any) {
	for _, term := range terms {
		e, err := c.resolveOperand(term)
		if err != nil {
			c.fail(err)
			return
		}
		c.orderBy = append(c.orderBy, e)
	}
}

// resolveColumn turns a string reference into a column of the statement's
// table or, for qualified names like "users.id" or "users(id)", of any
// registered table.
func (c *stmtCore) resolveColumn(ref string) (*Column, error) {
	if strings.ContainsAny(ref, ".(") {
		tableName, colName, err := sqlgen.ParseColumnRef(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, ref)
		}
		if c.table.db == nil {
			return nil, fmt.Errorf("%w: %s", ErrDetachedTable, c.table.Name())
		}
		tab, err := c.table.db.TableByName(tableName)
		if err != nil {
			return nil, err
		}
		return tab.Column(colName)
	}
	return c.table.Column(ref)
}

// resolveOperand normalizes the loose operand types statement builders
// accept: expressions and columns pass through, strings resolve as column
// references, everything else binds as a parameter.
func (c *stmtCore) resolveOperand(v any) (*Expr, error) {
	switch t := v.(type) {
	case *Expr:
		return t, t.Err()
	case *Column:
		e := NewExpr(t)
		return e, e.Err()
	case string:
		col, err := c.resolveColumn(t)
		if err != nil {
			return nil, err
		}
		e := NewExpr(col)
		return e, e.Err()
	default:
		e := NewExpr(v)
		return e, e.Err()
	}
}

// referencedTables collects, in first-reference order, every table the
// given expressions touch other than the statement's own.
func (c *stmtCore) referencedTables(extra ...*Expr) []*Table {
	var out []*Table
	add := func(e *Expr) {
		if e == nil {
			return
		}
		for _, t := range e.Tables() {
			if t != c.table {
				out = appendTable(out, t)
			}
		}
	}
	add(c.where)
	for _, e := range c.orderBy {
		add(e)
	}
	for _, e := range extra {
		add(e)
	}
	return out
}

// allJoins returns the statement's explicit joins followed by whatever the
// resolver adds to reach the remaining referenced tables.
func (c *stmtCore) allJoins(extra ...*Expr) ([]Join, error) {
	if c.noAutoJoin {
		return c.joins, nil
	}
	resolved, err := resolveJoins(c.table, c.referencedTables(extra...), c.joins)
	if err != nil {
		return nil, err
	}
	return append(append([]Join{}, c.joins...), resolved...), nil
}

// tailClauses renders the clause sequence shared by every variant, from
// FROM through OFFSET. groupBy and having are non-nil only for Select.
func (c *stmtCore) tailClauses(joins []Join, groupBy []*Expr, having *Expr) []string {
	clauses := []string{"FROM " + c.table.Name()}
	for _, j := range joins {
		clauses = append(clauses, j.String())
	}
	if c.where != nil {
		clauses = append(clauses, "WHERE "+c.where.String())
	}
	if len(groupBy) > 0 {
		clauses = append(clauses, "GROUP BY "+joinExprs(groupBy))
		if having != nil {
			clauses = append(clauses, "HAVING "+having.String())
		}
	}
	if len(c.orderBy) > 0 {
		clauses = append(clauses, "ORDER BY "+joinExprs(c.orderBy))
	}
	if c.hasLimit {
		clauses = append(clauses, "LIMIT "+strconv.FormatInt(c.limit, 10))
	}
	if c.hasOffset {
		clauses = append(clauses, "OFFSET "+strconv.FormatInt(c.offset, 10))
	}
	return clauses
}

func (c *stmtCore) mergedParams(extra ...*Expr) map[string]any {
	params := map[string]any{}
	merge := func(e *Expr) {
		if e == nil {
			return
		}
		for k, v := range e.Params() {
			params[k] = v
		}
	}
	merge(c.where)
	for _, j := range c.joins {
		merge(j.On)
	}
	for _, e := range c.orderBy {
		merge(e)
	}
	for _, e := range extra {
		merge(e)
	}
	return params
}

func (c *stmtCore) database() (*Database, error) {
	if c.table == nil || c.table.db == nil {
		name := "<nil>"
		if c.table != nil {
			name = c.table.Name()
		}
		return nil, fmt.Errorf("%w: %s", ErrDetachedTable, name)
	}
	return c.table.db, nil
}

func joinExprs(exprs []*Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// SELECT

// SelectStmt builds a SELECT. All setters return the statement for
// chaining; the first error encountered sticks and surfaces from SQL,
// Query, or any expression embedding the statement.
type SelectStmt struct {
	stmtCore
	cols    []*Expr
	groupBy []*Expr
	having  *Expr
}

func newSelect(t *Table, cols []any) *SelectStmt {
	s := &SelectStmt{stmtCore: stmtCore{table: t}}
	for _, c := range cols {
		e, err := s.resolveOperand(c)
		if err != nil {
			s.fail(err)
			return s
		}
		s.cols = append(s.cols, e)
	}
	return s
}

// Where AND-conjoins a condition into the WHERE clause.
func (s *SelectStmt) Where(cond *Expr) *SelectStmt {
	s.addWhere(cond)
	return s
}

// Match AND-conjoins one equality condition per entry, in key order. Keys
// are column references resolved against the statement's table.
func (s *SelectStmt) Match(conds map[string]any) *SelectStmt {
	s.addMatch(conds)
	return s
}

// Join adds an explicit JOIN clause. Explicit joins render before resolved
// ones and seed the resolver's reachable set.
func (s *SelectStmt) Join(table *Table, on *Expr) *SelectStmt {
	s.addJoin(table, on)
	return s
}

// NoAutoJoin disables implicit-join resolution; only explicit joins render.
func (s *SelectStmt) NoAutoJoin() *SelectStmt {
	s.noAutoJoin = true
	return s
}

// GroupBy sets the GROUP BY terms.
func (s *SelectStmt) GroupBy(cols ...any) *SelectStmt {
	for _, c := range cols {
		e, err := s.resolveOperand(c)
		if err != nil {
			s.fail(err)
			return s
		}
		s.groupBy = append(s.groupBy, e)
	}
	return s
}

// Having sets the HAVING condition. Rendering fails unless GROUP BY is
// also set.
func (s *SelectStmt) Having(cond *Expr) *SelectStmt {
	if cond != nil && cond.Err() != nil {
		s.fail(cond.Err())
		return s
	}
	s.having = cond
	return s
}

// OrderBy sets the ORDER BY terms. Use Desc or Asc on a column or
// expression to control direction.
func (s *SelectStmt) OrderBy(terms ...any) *SelectStmt {
	s.addOrderBy(terms)
	return s
}

// Limit sets the LIMIT clause.
func (s *SelectStmt) Limit(n int64) *SelectStmt {
	s.limit, s.hasLimit = n, true
	return s
}

// Offset sets the OFFSET clause.
func (s *SelectStmt) Offset(n int64) *SelectStmt {
	s.offset, s.hasOffset = n, true
	return s
}

// Err returns the first error accumulated while building the statement.
func (s *SelectStmt) Err() error { return s.err }

func (s *SelectStmt) selectClause() string {
	if len(s.cols) == 0 {
		return "SELECT *"
	}
	return "SELECT " + joinExprs(s.cols)
}

func (s *SelectStmt) clauses() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.having != nil && len(s.groupBy) == 0 {
		return nil, fmt.Errorf("%w: HAVING requires GROUP BY", ErrMalformedStatement)
	}
	exprs := append(append([]*Expr{}, s.cols...), s.groupBy...)
	exprs = append(exprs, s.having)
	joins, err := s.allJoins(exprs...)
	if err != nil {
		return nil, err
	}
	return append([]string{s.selectClause()},
		s.tailClauses(joins, s.groupBy, s.having)...), nil
}

// SQL renders the statement.
func (s *SelectStmt) SQL() (string, error) {
	clauses, err := s.clauses()
	if err != nil {
		return "", err
	}
	return strings.Join(clauses, "\n"), nil
}

// Params returns the statement's merged parameter bindings.
func (s *SelectStmt) Params() map[string]any {
	exprs := append(append([]*Expr{}, s.cols...), s.groupBy...)
	exprs = append(exprs, s.having)
	return s.mergedParams(exprs...)
}

// Query renders and executes the statement.
func (s *SelectStmt) Query(ctx context.Context) (*sql.Rows, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}
	stmt, err := s.SQL()
	if err != nil {
		return nil, err
	}
	return db.Execute(ctx, stmt, s.Params())
}

// Contains builds a membership test with this statement as the sub-select,
// i.e. "other IN (SELECT ...)".
func (s *SelectStmt) Contains(other any) *Expr {
	return NewExpr(other, "IN", s)
}

// Union combines this statement with another using UNION.
func (s *SelectStmt) Union(other *SelectStmt) *CompoundStmt {
	return newCompound(s, "UNION", other)
}

// UnionAll combines this statement with another using UNION ALL.
func (s *SelectStmt) UnionAll(other *SelectStmt) *CompoundStmt {
	return newCompound(s, "UNION ALL", other)
}

// Intersect combines this statement with another using INTERSECT.
func (s *SelectStmt) Intersect(other *SelectStmt) *CompoundStmt {
	return newCompound(s, "INTERSECT", other)
}

// Except combines this statement with another using EXCEPT.
func (s *SelectStmt) Except(other *SelectStmt) *CompoundStmt {
	return newCompound(s, "EXCEPT", other)
}

// CompoundStmt is a chain of SELECTs combined with set operators.
type CompoundStmt struct {
	first *SelectStmt
	ops   []string
	rest  []*SelectStmt
}

func newCompound(first *SelectStmt, op string, next *SelectStmt) *CompoundStmt {
	return &CompoundStmt{first: first, ops: []string{op}, rest: []*SelectStmt{next}}
}

// Union appends another SELECT with UNION.
func (c *CompoundStmt) Union(s *SelectStmt) *CompoundStmt { return c.extend("UNION", s) }

// UnionAll appends another SELECT with UNION ALL.
func (c *CompoundStmt) UnionAll(s *SelectStmt) *CompoundStmt { return c.extend("UNION ALL", s) }

// Intersect appends another SELECT with INTERSECT.
func (c *CompoundStmt) Intersect(s *SelectStmt) *CompoundStmt { return c.extend("INTERSECT", s) }

// Except appends another SELECT with EXCEPT.
func (c *CompoundStmt) Except(s *SelectStmt) *CompoundStmt { return c.extend("EXCEPT", s) }

func (c *CompoundStmt) extend(op string, s *SelectStmt) *CompoundStmt {
	c.ops = append(c.ops, op)
	c.rest = append(c.rest, s)
	return c
}

// SQL renders each member statement joined by its set operator.
func (c *CompoundStmt) SQL() (string, error) {
	out, err := c.first.SQL()
	if err != nil {
		return "", err
	}
	for i, s := range c.rest {
		part, err := s.SQL()
		if err != nil {
			return "", err
		}
		out += "\n" + c.ops[i] + "\n" + part
	}
	return out, nil
}

// Params merges the bindings of every member statement. Placeholder names
// are globally unique, so merging never collides.
func (c *CompoundStmt) Params() map[string]any {
	params := c.first.Params()
	for _, s := range c.rest {
		for k, v := range s.Params() {
			params[k] = v
		}
	}
	return params
}

// Query renders and executes the compound statement.
func (c *CompoundStmt) Query(ctx context.Context) (*sql.Rows, error) {
	db, err := c.first.database()
	if err != nil {
		return nil, err
	}
	stmt, err := c.SQL()
	if err != nil {
		return nil, err
	}
	return db.Execute(ctx, stmt, c.Params())
}

// INSERT

// InsertStmt builds a single-row INSERT. Columns render in sorted name
// order so the statement text is deterministic.
type InsertStmt struct {
	stmtCore
	row    map[string]*Expr
	keys   []string
	policy ConflictPolicy
}

func newInsert(t *Table, row map[string]any) *InsertStmt {
	s := &InsertStmt{stmtCore: stmtCore{table: t}, row: map[string]*Expr{}}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := t.Column(k); err != nil {
			s.fail(err)
			return s
		}
		e := NewExpr(row[k])
		if e.Err() != nil {
			s.fail(e.Err())
			return s
		}
		s.row[k] = e
	}
	s.keys = keys
	return s
}

// Or sets the conflict-resolution policy.
func (s *InsertStmt) Or(policy ConflictPolicy) *InsertStmt {
	s.policy = policy
	return s
}

// Set adds or replaces one column value.
func (s *InsertStmt) Set(col string, value any) *InsertStmt {
	if _, err := s.table.Column(col); err != nil {
		s.fail(err)
		return s
	}
	e := NewExpr(value)
	if e.Err() != nil {
		s.fail(e.Err())
		return s
	}
	if _, exists := s.row[col]; !exists {
		s.keys = append(s.keys, col)
		sort.Strings(s.keys)
	}
	s.row[col] = e
	return s
}

// Err returns the first error accumulated while building the statement.
func (s *InsertStmt) Err() error { return s.err }

// SQL renders the statement.
func (s *InsertStmt) SQL() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(s.keys) == 0 {
		return "", fmt.Errorf("%w: insert with no values", ErrMalformedStatement)
	}
	vals := make([]string, len(s.keys))
	for i, k := range s.keys {
		vals[i] = s.row[k].String()
	}
	head := "INSERT"
	if s.policy != "" {
		head += " OR " + string(s.policy)
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		head, s.table.Name(), strings.Join(s.keys, ", "), strings.Join(vals, ", ")), nil
}

// Params returns the statement's merged parameter bindings.
func (s *InsertStmt) Params() map[string]any {
	params := map[string]any{}
	for _, e := range s.row {
		for k, v := range e.Params() {
			params[k] = v
		}
	}
	return params
}

// Exec renders and executes the statement.
func (s *InsertStmt) Exec(ctx context.Context) (sql.Result, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}
	stmt, err := s.SQL()
	if err != nil {
		return nil, err
	}
	return db.ExecStatement(ctx, stmt, s.Params())
}

// InsertManyStmt builds a batched INSERT: one positional placeholder per
// column, executed once per row inside a single transaction.
type InsertManyStmt struct {
	stmtCore
	cols   []*Column
	rows   [][]any
	policy ConflictPolicy
}

func newInsertMany(t *Table, cols []string, rows [][]any) *InsertManyStmt {
	s := &InsertManyStmt{stmtCore: stmtCore{table: t}, rows: rows}
	for _, name := range cols {
		col, err := s.resolveColumn(name)
		if err != nil {
			s.fail(err)
			return s
		}
		s.cols = append(s.cols, col)
	}
	return s
}

// Or sets the conflict-resolution policy.
func (s *InsertManyStmt) Or(policy ConflictPolicy) *InsertManyStmt {
	s.policy = policy
	return s
}

// Err returns the first error accumulated while building the statement.
func (s *InsertManyStmt) Err() error { return s.err }

// SQL renders the statement with one positional placeholder per column.
func (s *InsertManyStmt) SQL() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(s.cols) == 0 {
		return "", fmt.Errorf("%w: insert with no columns", ErrMalformedStatement)
	}
	names := make([]string, len(s.cols))
	marks := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name()
		marks[i] = "?"
	}
	head := "INSERT"
	if s.policy != "" {
		head += " OR " + string(s.policy)
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		head, s.table.Name(), strings.Join(names, ", "), strings.Join(marks, ", ")), nil
}

// Params is always empty; the row batch binds positionally at execution.
func (s *InsertManyStmt) Params() map[string]any { return map[string]any{} }

// Exec renders the statement once and runs it for every row in a single
// transaction.
func (s *InsertManyStmt) Exec(ctx context.Context) error {
	db, err := s.database()
	if err != nil {
		return err
	}
	stmt, err := s.SQL()
	if err != nil {
		return err
	}
	for i, row := range s.rows {
		if len(row) != len(s.cols) {
			return fmt.Errorf("%w: row %d has %d values for %d columns",
				ErrMalformedStatement, i, len(row), len(s.cols))
		}
	}
	return db.ExecuteMany(ctx, stmt, s.rows)
}

// UPDATE

// UpdateStmt builds an UPDATE. When the statement needs joins, the joined
// tables enter through a FROM list and the join conditions fold into WHERE,
// where references to the update target resolve against the row being
// updated.
type UpdateStmt struct {
	stmtCore
	updates map[string]*Expr
	keys    []string
}

func newUpdate(t *Table, updates map[string]any) *UpdateStmt {
	s := &UpdateStmt{stmtCore: stmtCore{table: t}, updates: map[string]*Expr{}}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		col, err := s.resolveColumn(k)
		if err != nil {
			s.fail(err)
			return s
		}
		e := NewExpr(updates[k])
		if e.Err() != nil {
			s.fail(e.Err())
			return s
		}
		s.updates[col.Name()] = e
		s.keys = append(s.keys, col.Name())
	}
	return s
}

// Where AND-conjoins a condition into the WHERE clause.
func (s *UpdateStmt) Where(cond *Expr) *UpdateStmt {
	s.addWhere(cond)
	return s
}

// Match AND-conjoins one equality condition per entry, in key order.
func (s *UpdateStmt) Match(conds map[string]any) *UpdateStmt {
	s.addMatch(conds)
	return s
}

// Join adds an explicit JOIN clause.
func (s *UpdateStmt) Join(table *Table, on *Expr) *UpdateStmt {
	s.addJoin(table, on)
	return s
}

// NoAutoJoin disables implicit-join resolution.
func (s *UpdateStmt) NoAutoJoin() *UpdateStmt {
	s.noAutoJoin = true
	return s
}

// OrderBy sets the ORDER BY terms.
func (s *UpdateStmt) OrderBy(terms ...any) *UpdateStmt {
	s.addOrderBy(terms)
	return s
}

// Limit sets the LIMIT clause.
func (s *UpdateStmt) Limit(n int64) *UpdateStmt {
	s.limit, s.hasLimit = n, true
	return s
}

// Err returns the first error accumulated while building the statement.
func (s *UpdateStmt) Err() error { return s.err }

func (s *UpdateStmt) valueExprs() []*Expr {
	out := make([]*Expr, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.updates[k])
	}
	return out
}

// SQL renders the statement.
func (s *UpdateStmt) SQL() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(s.keys) == 0 {
		return "", fmt.Errorf("%w: update with no assignments", ErrMalformedStatement)
	}
	joins, err := s.allJoins(s.valueExprs()...)
	if err != nil {
		return "", err
	}

	sets := make([]string, len(s.keys))
	for i, k := range s.keys {
		sets[i] = k + " = " + s.updates[k].String()
	}
	clauses := []string{
		"UPDATE " + s.table.Name(),
		"SET " + strings.Join(sets, ", "),
	}
	if len(joins) == 0 {
		// tailClauses renders FROM first; without joins the clause is
		// redundant.
		return strings.Join(append(clauses, s.tailClauses(nil, nil, nil)[1:]...), "\n"), nil
	}

	// SQLite resolves bare references to the target table in an UPDATE FROM
	// against the row being updated, so join conditions belong in WHERE.
	// Only a self-join needs the alias, to keep the two row scopes apart.
	froms := make([]string, len(joins))
	var cond *Expr
	for i, j := range joins {
		froms[i] = j.Table.Name()
		if j.Table == s.table {
			froms[i] += " AS " + updateFromAlias
		}
		if j.On == nil {
			continue
		}
		if cond == nil {
			cond = j.On
		} else {
			cond = cond.And(j.On)
		}
	}
	if s.where != nil {
		if cond == nil {
			cond = s.where
		} else {
			cond = cond.And(s.where)
		}
	}
	clauses = append(clauses, "FROM "+strings.Join(froms, ", "))
	if cond != nil {
		clauses = append(clauses, "WHERE "+cond.String())
	}
	if len(s.orderBy) > 0 {
		clauses = append(clauses, "ORDER BY "+joinExprs(s.orderBy))
	}
	if s.hasLimit {
		clauses = append(clauses, "LIMIT "+strconv.FormatInt(s.limit, 10))
	}
	return strings.Join(clauses, "\n"), nil
}

// Params returns the statement's merged parameter bindings.
func (s *UpdateStmt) Params() map[string]any {
	return s.mergedParams(s.valueExprs()...)
}

// Exec renders and executes the statement.
func (s *UpdateStmt) Exec(ctx context.Context) (sql.Result, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}
	stmt, err := s.SQL()
	if err != nil {
		return nil, err
	}
	return db.ExecStatement(ctx, stmt, s.Params())
}

// DELETE

// DeleteStmt builds a DELETE. With no WHERE clause it removes every row.
type DeleteStmt struct {
	stmtCore
}

func newDelete(t *Table) *DeleteStmt {
	return &DeleteStmt{stmtCore: stmtCore{table: t}}
}

// Where AND-conjoins a condition into the WHERE clause.
func (s *DeleteStmt) Where(cond *Expr) *DeleteStmt {
	s.addWhere(cond)
	return s
}

// Match AND-conjoins one equality condition per entry, in key order.
func (s *DeleteStmt) Match(conds map[string]any) *DeleteStmt {
	s.addMatch(conds)
	return s
}

// OrderBy sets the ORDER BY terms.
func (s *DeleteStmt) OrderBy(terms ...any) *DeleteStmt {
	s.addOrderBy(terms)
	return s
}

// Limit sets the LIMIT clause.
func (s *DeleteStmt) Limit(n int64) *DeleteStmt {
	s.limit, s.hasLimit = n, true
	return s
}

// Err returns the first error accumulated while building the statement.
func (s *DeleteStmt) Err() error { return s.err }

// SQL renders the statement. Conditions may only reference the target
// table, so no joins resolve here; reaching other tables takes a
// sub-select.
func (s *DeleteStmt) SQL() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if refs := s.referencedTables(); len(refs) > 0 {
		return "", fmt.Errorf("%w: DELETE cannot join %s; use a sub-select",
			ErrUnresolvableJoin, refs[0])
	}
	clauses := s.tailClauses(nil, nil, nil)
	clauses[0] = "DELETE " + clauses[0]
	return strings.Join(clauses, "\n"), nil
}

// Params returns the statement's merged parameter bindings.
func (s *DeleteStmt) Params() map[string]any {
	return s.mergedParams()
}

// Exec renders and executes the statement.
func (s *DeleteStmt) Exec(ctx context.Context) (sql.Result, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}
	stmt, err := s.SQL()
	if err != nil {
		return nil, err
	}
	return db.ExecStatement(ctx, stmt, s.Params())
}
