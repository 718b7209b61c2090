// Package garter builds SQL statements from composable, typed expression
// trees instead of raw strings.
//
// Expressions parameterize every input value (injection safety) and track
// which tables they reference, so statements can infer JOIN clauses from the
// foreign keys declared on their tables. The package renders a SQLite
// dialect and executes through database/sql; any driver-compatible handle
// works, but it is written against modernc.org/sqlite.
//
// # Basic Usage
//
//	db, _ := garter.Open("app.db")
//	users := db.T("users")
//	posts := db.T("posts")
//
//	rows, _ := posts.Select(posts.C("text")).
//		Where(users.C("last_name").Eq("Doe")).
//		Query(ctx)
//
// The posts→users join above is inferred from the foreign key on
// posts.user_id; no explicit JOIN is needed.
//
// # Expressions
//
// Every operator method returns a new immutable *Expr, so sub-expressions
// can be reused and combined freely:
//
//	cond := posts.C("text").Like("%rain%").And(users.C("age").Gt(21))
//	inverted := cond.Not() // De Morgan: NOT LIKE ... OR age <= 21
//
// Construction failures (unsupported operand types, non-invertible shapes)
// are carried on the expression and surface from Err or at render time,
// before anything reaches the engine.
package garter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// literalKeywords are the strings that pass through into rendered SQL
// verbatim instead of being bound to a placeholder.
var literalKeywords = map[string]bool{
	"=": true, "==": true, "%": true, ">": true, ">=": true, "<": true,
	"<=": true, "!=": true, "!<": true, "!>": true, "~": true, "<>": true,
	"&": true, "||": true, "+": true, "-": true, "/": true, "*": true,
	">>": true, "<<": true, "LIKE": true, "NOT": true, "NOT LIKE": true,
	"NOT IN": true, "SELECT": true, "FROM": true, "WHERE": true, "IN": true,
	"BETWEEN": true, "NOT BETWEEN": true, "GLOB": true, "EXISTS": true,
	"NOT EXISTS": true, "UNIQUE": true, "NULL": true, "NOT NULL": true,
	"AND": true, "OR": true, "AS": true, "(": true, ")": true,
	"DISTINCT": true, "ALL": true, "ASC": true, "DESC": true,
	"IS": true, "IS NOT": true,
}

// Placeholder names come from a process-wide counter so that any combination
// of independently built expressions can be merged into one statement without
// key collisions. Names carry a "p" prefix because database/sql rejects named
// arguments that do not begin with a letter. The counter wraps at
// maxPlaceholder.
const maxPlaceholder = 9999999

var (
	placeholderMu  sync.Mutex
	placeholderSeq int
)

func nextPlaceholder() string {
	placeholderMu.Lock()
	defer placeholderMu.Unlock()
	if placeholderSeq >= maxPlaceholder {
		placeholderSeq = 0
	}
	placeholderSeq++
	return "p" + strconv.Itoa(placeholderSeq)
}

type tokenKind uint8

const (
	tokKeyword tokenKind = iota // rendered verbatim
	tokParam                    // rendered as :name
	tokColumn
	tokTable
	tokExpr
	tokStmt // sub-select, rendered in parentheses
)

// token is one element of an expression's render sequence. The kinds form a
// closed set: anything else is rejected at construction with
// ErrUnsupportedOperand.
type token struct {
	kind tokenKind
	text string // keyword text or placeholder name (without the colon)
	col  *Column
	tab  *Table
	expr *Expr
	stmt Statement
}

func (t token) String() string {
	switch t.kind {
	case tokKeyword:
		return t.text
	case tokParam:
		return ":" + t.text
	case tokColumn:
		return t.col.String()
	case tokTable:
		return t.tab.Name()
	case tokExpr:
		return t.expr.String()
	case tokStmt:
		sql, err := t.stmt.SQL()
		if err != nil {
			return "(!" + err.Error() + ")"
		}
		return "(" + sql + ")"
	}
	return ""
}

// Expr is an immutable SQL fragment: an ordered token sequence with its own
// parameter bindings and the set of tables it references. All operator
// methods return new expressions, which is what makes reuse of
// sub-expressions and logical inversion safe.
type Expr struct {
	tokens []token
	fn     string // SQL function name; changes rendering to fn(a, b, ...)
	prefix string // rendered inside the opening parenthesis, e.g. DISTINCT
	list   bool   // render as a comma-separated parenthesized value list
	params map[string]any
	tabs   []*Table
	err    error
}

// NewExpr builds an expression from the given arguments in order. Each
// argument is classified: expressions, columns, tables, and statements are
// merged by reference; nil renders as the NULL keyword; strings in the
// operator/keyword whitelist pass through verbatim; every other string,
// numeric, or boolean value is bound to a fresh placeholder. Arguments of
// any other type record ErrUnsupportedOperand on the result.
func NewExpr(args ...any) *Expr {
	return newExpr("", "", args...)
}

// Func builds a function-call expression, rendered name(arg1, arg2, ...).
func Func(name string, args ...any) *Expr {
	return newExpr(name, "", args...)
}

func newExpr(fn, prefix string, args ...any) *Expr {
	e := &Expr{
		fn:     fn,
		prefix: prefix,
		tokens: make([]token, 0, len(args)),
		params: map[string]any{},
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case *Expr:
			for k, val := range v.params {
				e.params[k] = val
			}
			e.tabs = mergeTables(e.tabs, v.tabs...)
			if v.err != nil && e.err == nil {
				e.err = v.err
			}
			e.tokens = append(e.tokens, token{kind: tokExpr, expr: v})
		case *Column:
			if v.unknown && e.err == nil {
				e.err = fmt.Errorf("%w: %s", ErrUnknownColumn, v)
			}
			e.tabs = mergeTables(e.tabs, v.table)
			e.tokens = append(e.tokens, token{kind: tokColumn, col: v})
		case *Table:
			e.tabs = mergeTables(e.tabs, v)
			e.tokens = append(e.tokens, token{kind: tokTable, tab: v})
		case Statement:
			// A sub-select carries its own FROM clause, so its parameters
			// are absorbed but its tables are not: the outer statement must
			// not try to join them.
			for k, val := range v.Params() {
				e.params[k] = val
			}
			e.tokens = append(e.tokens, token{kind: tokStmt, stmt: v})
		case nil:
			e.tokens = append(e.tokens, token{kind: tokKeyword, text: "NULL"})
		case string:
			if literalKeywords[v] {
				e.tokens = append(e.tokens, token{kind: tokKeyword, text: v})
			} else {
				e.bindParam(v)
			}
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64, bool:
			e.bindParam(v)
		default:
			if e.err == nil {
				e.err = fmt.Errorf("%w: %T", ErrUnsupportedOperand, arg)
			}
		}
	}
	return e
}

func (e *Expr) bindParam(v any) {
	name := nextPlaceholder()
	e.params[name] = v
	e.tokens = append(e.tokens, token{kind: tokParam, text: name})
}

func errExpr(err error) *Expr {
	return &Expr{err: err, params: map[string]any{}}
}

func mergeTables(dst []*Table, src ...*Table) []*Table {
	for _, t := range src {
		if t == nil {
			continue
		}
		found := false
		for _, have := range dst {
			if have == t {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, t)
		}
	}
	return dst
}

// Err reports the first failure recorded while building this expression.
func (e *Expr) Err() error { return e.err }

// Params returns a copy of the placeholder bindings this expression carries.
func (e *Expr) Params() map[string]any {
	out := make(map[string]any, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

// Tables returns the tables this expression references, transitively, in
// first-reference order.
func (e *Expr) Tables() []*Table {
	return append([]*Table(nil), e.tabs...)
}

// String renders the expression as SQL text with placeholders in place of
// bound values.
func (e *Expr) String() string {
	sep := " "
	if e.fn != "" {
		sep = ", "
	}
	parts := make([]string, len(e.tokens))
	for i, t := range e.tokens {
		parts[i] = t.String()
	}
	if e.list {
		return "(" + strings.Join(parts, ", ") + ")"
	}
	out := strings.Join(parts, sep)
	out = strings.ReplaceAll(out, "( ", "(")
	out = strings.ReplaceAll(out, " )", ")")
	if e.prefix != "" {
		out = e.prefix + " " + out
	}
	if e.fn != "" {
		return e.fn + "(" + out + ")"
	}
	return out
}

// Render returns the expression text with bound values substituted for their
// placeholders. This is for logging and debugging only; execution always
// uses the parameterized form.
func (e *Expr) Render() string {
	return substituteParams(e.String(), e.params)
}

func substituteParams(text string, params map[string]any) string {
	// Longest names first so :p12 is never clobbered by a :p1 substitution.
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		v := params[k]
		var lit string
		switch val := v.(type) {
		case string:
			lit = "'" + strings.ReplaceAll(val, "'", "''") + "'"
		default:
			lit = fmt.Sprintf("%v", val)
		}
		text = strings.ReplaceAll(text, ":"+k, lit)
	}
	return text
}

// COMPARISONS

// Eq renders "self = other".
func (e *Expr) Eq(other any) *Expr { return NewExpr(e, "=", other) }

// Ne renders "self <> other".
func (e *Expr) Ne(other any) *Expr { return NewExpr(e, "<>", other) }

// Gt renders "self > other".
func (e *Expr) Gt(other any) *Expr { return NewExpr(e, ">", other) }

// Lt renders "self < other".
func (e *Expr) Lt(other any) *Expr { return NewExpr(e, "<", other) }

// Ge renders "self >= other".
func (e *Expr) Ge(other any) *Expr { return NewExpr(e, ">=", other) }

// Le renders "self <= other".
func (e *Expr) Le(other any) *Expr { return NewExpr(e, "<=", other) }

// Is renders "self IS other"; use Is(nil) for IS NULL.
func (e *Expr) Is(other any) *Expr { return NewExpr(e, "IS", other) }

// BOOLEAN COMBINATION

// And renders "self AND other".
func (e *Expr) And(other any) *Expr { return NewExpr(e, "AND", other) }

// Or renders "(self) OR (other)". Both sides are parenthesized to preserve
// precedence when the result is combined further.
func (e *Expr) Or(other any) *Expr {
	return NewExpr("(", e, ")", "OR", "(", other, ")")
}

// BIT SHIFTS

// Shr renders "self >> other".
func (e *Expr) Shr(other any) *Expr { return NewExpr(e, ">>", other) }

// Shl renders "self << other".
func (e *Expr) Shl(other any) *Expr { return NewExpr(e, "<<", other) }

// ARITHMETIC

// Add renders "self + other" for numeric operands and "self || other"
// (concatenation) when both sides infer as text. If neither variant can be
// chosen the result carries ErrTypeMismatch.
func (e *Expr) Add(other any) *Expr { return addExpr(e, other) }

func addExpr(left, right any) *Expr {
	lt, lerr := typeOfValue(left)
	rt, rerr := typeOfValue(right)
	if lerr != nil {
		return errExpr(fmt.Errorf("%w: %v", ErrTypeMismatch, lerr))
	}
	if rerr != nil {
		return errExpr(fmt.Errorf("%w: %v", ErrTypeMismatch, rerr))
	}
	if lt == typeText && rt == typeText {
		return NewExpr(left, "||", right)
	}
	return NewExpr(left, "+", right)
}

// Sub renders "self - other".
func (e *Expr) Sub(other any) *Expr { return NewExpr(e, "-", other) }

// Mul renders "self * other".
func (e *Expr) Mul(other any) *Expr { return NewExpr(e, "*", other) }

// Div renders "self / other".
func (e *Expr) Div(other any) *Expr { return NewExpr(e, "/", other) }

// Mod renders "self % other" for numeric operands and "self LIKE other" when
// the left side infers as text.
func (e *Expr) Mod(other any) *Expr { return modExpr(e, other) }

func modExpr(left, right any) *Expr {
	lt, lerr := typeOfValue(left)
	if lerr != nil {
		return errExpr(fmt.Errorf("%w: %v", ErrTypeMismatch, lerr))
	}
	if lt == typeText {
		return NewExpr(left, "LIKE", right)
	}
	return NewExpr(left, "%", right)
}

// MEMBERSHIP AND PATTERNS

// In renders "self IN (v1, v2, ...)", or "self IN (SELECT ...)" when given a
// single sub-select.
func (e *Expr) In(vals ...any) *Expr {
	if len(vals) == 1 {
		if _, ok := vals[0].(Statement); ok {
			return NewExpr(e, "IN", vals[0])
		}
	}
	inner := newExpr("", "", vals...)
	inner.list = true
	return NewExpr(e, "IN", inner)
}

// Between renders "self BETWEEN lo AND hi".
func (e *Expr) Between(lo, hi any) *Expr {
	return NewExpr(e, "BETWEEN", NewExpr(lo, "AND", hi))
}

// Like renders "self LIKE pattern".
func (e *Expr) Like(pattern any) *Expr { return NewExpr(e, "LIKE", pattern) }

// Glob renders "self GLOB pattern".
func (e *Expr) Glob(pattern any) *Expr { return NewExpr(e, "GLOB", pattern) }

// StartsWith renders "self LIKE 'prefix%'".
func (e *Expr) StartsWith(prefix string) *Expr { return e.Like(prefix + "%") }

// EndsWith renders "self LIKE '%suffix'".
func (e *Expr) EndsWith(suffix string) *Expr { return e.Like("%" + suffix) }

// ORDERING SHORTCUTS

// Desc marks the expression for descending order in ORDER BY clauses.
func (e *Expr) Desc() *Expr { return NewExpr(e, "DESC") }

// Asc marks the expression for ascending order in ORDER BY clauses.
func (e *Expr) Asc() *Expr { return NewExpr(e, "ASC") }

// Distinct returns a copy with the DISTINCT prefix, for use inside aggregate
// calls: Count(col).Distinct() renders COUNT(DISTINCT col).
func (e *Expr) Distinct() *Expr {
	ne := *e
	ne.prefix = "DISTINCT"
	return &ne
}

// LOGICAL INVERSION

// Table of operators and their logical inverses. AND/OR are handled
// separately because their operands must be inverted recursively.
var inverseOps = [][2]string{
	{"LIKE", "NOT LIKE"},
	{"IN", "NOT IN"},
	{"BETWEEN", "NOT BETWEEN"},
	{"IS", "IS NOT"},
	{"EXISTS", "NOT EXISTS"},
	{"<>", "="},
	{"==", "<>"},
	{"<", ">="},
	{">", "<="},
}

// Not returns an expression that matches exactly the rows this one does not,
// by swapping the top-level operator with its inverse. Compound AND/OR
// expressions follow De Morgan's law: both operands are inverted and the
// connective is swapped. Shapes with no known inverse carry
// ErrNotInvertible.
func (e *Expr) Not() *Expr {
	if e.err != nil {
		return e
	}

	var op string
	var left, right token
	switch {
	case e.fn != "":
		op = e.fn
	case len(e.tokens) == 3 && e.tokens[1].kind == tokKeyword:
		op = e.tokens[1].text
		left, right = e.tokens[0], e.tokens[2]
	case len(e.tokens) == 7 && e.tokens[3].kind == tokKeyword && e.tokens[3].text == "OR":
		op = "OR"
		left, right = e.tokens[1], e.tokens[5]
	default:
		return errExpr(fmt.Errorf("%w: %q", ErrNotInvertible, e.String()))
	}

	if op == "AND" || op == "OR" {
		li, ok := invertToken(left)
		if !ok {
			return errExpr(fmt.Errorf("%w: %q", ErrNotInvertible, left.String()))
		}
		ri, ok := invertToken(right)
		if !ok {
			return errExpr(fmt.Errorf("%w: %q", ErrNotInvertible, right.String()))
		}
		if op == "AND" {
			return li.Or(ri)
		}
		return li.And(ri)
	}

	newOp := ""
	for _, pair := range inverseOps {
		if op == pair[0] {
			newOp = pair[1]
			break
		}
		if op == pair[1] {
			newOp = pair[0]
			break
		}
	}
	if newOp == "" {
		return errExpr(fmt.Errorf("%w: operator %q", ErrNotInvertible, op))
	}

	ne := &Expr{
		tokens: append([]token(nil), e.tokens...),
		fn:     e.fn,
		prefix: e.prefix,
		params: e.params,
		tabs:   e.tabs,
	}
	if e.fn != "" {
		ne.fn = newOp
	} else {
		ne.tokens[1] = token{kind: tokKeyword, text: newOp}
	}
	return ne
}

func invertToken(t token) (*Expr, bool) {
	switch t.kind {
	case tokExpr:
		inv := t.expr.Not()
		return inv, inv.err == nil
	default:
		return nil, false
	}
}

// FUNCTION SHORTCUTS (the full library lives in functions.go)

// Abs renders ABS(self).
func (e *Expr) Abs() *Expr { return Func("ABS", e) }

// Count renders COUNT(self).
func (e *Expr) Count() *Expr { return Func("COUNT", e) }

// Max renders MAX(self).
func (e *Expr) Max() *Expr { return Func("MAX", e) }

// Min renders MIN(self).
func (e *Expr) Min() *Expr { return Func("MIN", e) }

// Avg renders AVG(self).
func (e *Expr) Avg() *Expr { return Func("AVG", e) }

// Sum renders SUM(self).
func (e *Expr) Sum() *Expr { return Func("SUM", e) }

// Round renders ROUND(self).
func (e *Expr) Round() *Expr { return Func("ROUND", e) }

// Exists renders EXISTS(self).
func (e *Expr) Exists() *Expr { return Func("EXISTS", e) }

// Length renders LENGTH(self).
func (e *Expr) Length() *Expr { return Func("LENGTH", e) }

// Lower renders LOWER(self).
func (e *Expr) Lower() *Expr { return Func("LOWER", e) }

// Upper renders UPPER(self).
func (e *Expr) Upper() *Expr { return Func("UPPER", e) }

// Substr renders SUBSTR(self, start, length).
func (e *Expr) Substr(start, length int) *Expr {
	return Func("SUBSTR", e, start, length)
}

// Replace renders REPLACE(self, find, repl).
func (e *Expr) Replace(find, repl any) *Expr {
	return Func("REPLACE", e, find, repl)
}

// Trim renders TRIM(self) or TRIM(self, chars).
func (e *Expr) Trim(chars ...string) *Expr { return trimFunc("TRIM", e, chars) }

// LTrim renders LTRIM(self) or LTRIM(self, chars).
func (e *Expr) LTrim(chars ...string) *Expr { return trimFunc("LTRIM", e, chars) }

// RTrim renders RTRIM(self) or RTRIM(self, chars).
func (e *Expr) RTrim(chars ...string) *Expr { return trimFunc("RTRIM", e, chars) }

func trimFunc(fn string, e *Expr, chars []string) *Expr {
	if len(chars) > 0 && chars[0] != " " {
		return Func(fn, e, chars[0])
	}
	return Func(fn, e)
}

// Instr renders INSTR(self, substr). The receiver must infer as text.
func (e *Expr) Instr(substr any) *Expr {
	t, err := typeOfValue(e)
	if err != nil {
		return errExpr(fmt.Errorf("%w: %v", ErrTypeMismatch, err))
	}
	if t != typeText {
		return errExpr(fmt.Errorf("%w: INSTR on non-text operand", ErrTypeMismatch))
	}
	return Func("INSTR", e, substr)
}

// Pow renders POWER(self, exponent).
func (e *Expr) Pow(exponent any) *Expr { return Func("POWER", e, exponent) }
