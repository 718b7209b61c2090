// Package sqlgen renders and parses the subset of SQLite DDL that the table
// registry works with: CREATE TABLE statements with column constraint text,
// FOREIGN KEY clauses, and an optional composite PRIMARY KEY.
package sqlgen

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedSchema is returned when a CREATE TABLE statement cannot be
// broken into column and constraint clauses.
var ErrMalformedSchema = errors.New("sqlgen: malformed schema")

// ErrBadColumnRef is returned when a column reference string is neither
// "table.column" nor "table(column)".
var ErrBadColumnRef = errors.New("sqlgen: unrecognized column reference")

// ColumnDef is one column declaration: a name plus its raw constraint text
// ("TEXT NOT NULL", "INTEGER PRIMARY KEY", or empty).
type ColumnDef struct {
	Name        string
	Constraints string
}

// ForeignKeyDef is one FOREIGN KEY (Column) REFERENCES RefTable(RefColumn)
// clause.
type ForeignKeyDef struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef is the parsed or to-be-rendered shape of a table. Columns keep
// declaration order, which drives rendering.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	ForeignKeys []ForeignKeyDef
	PrimaryKey  []string
}

// CreateSQL renders the CREATE TABLE statement for the definition.
func (d TableDef) CreateSQL() string {
	clauses := make([]string, 0, len(d.Columns)+len(d.ForeignKeys)+1)
	for _, col := range d.Columns {
		if col.Constraints != "" {
			clauses = append(clauses, col.Name+" "+col.Constraints)
		} else {
			clauses = append(clauses, col.Name)
		}
	}
	for _, fk := range d.ForeignKeys {
		clauses = append(clauses, fmt.Sprintf(
			"FOREIGN KEY (%s) REFERENCES %s(%s)",
			fk.Column, fk.RefTable, fk.RefColumn,
		))
	}
	if len(d.PrimaryKey) > 0 {
		clauses = append(clauses,
			fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(d.PrimaryKey, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Name, strings.Join(clauses, ", "))
}

var (
	wsRe         = regexp.MustCompile(`\s+`)
	foreignKeyRe = regexp.MustCompile(`^FOREIGN KEY ?\(?(.+?)\)? REFERENCES ([^\s(]+) ?\((.+?)\)`)
	primaryKeyRe = regexp.MustCompile(`^PRIMARY KEY ?\((.+)\)`)
	referencesRe = regexp.MustCompile(`REFERENCES ([^\s(]+) ?\((.+?)\)`)
)

// ParseCreateTable reads a CREATE TABLE statement back into a TableDef.
// The statement is normalized first (whitespace collapsed, quoting
// characters stripped), so output from either this package or the engine's
// sqlite_schema view parses identically. Inline "REFERENCES t(c)" column
// constraints are picked up as foreign keys alongside table-level FOREIGN
// KEY clauses.
func ParseCreateTable(schema string) (TableDef, error) {
	var def TableDef

	schema = wsRe.ReplaceAllString(schema, " ")
	schema = strings.NewReplacer(`"`, "", "'", "", "`", "", "[", "", "]", "").Replace(schema)
	schema = strings.ReplaceAll(schema, "( ", "(")
	schema = strings.ReplaceAll(schema, " )", ")")
	schema = strings.TrimSpace(schema)

	open := strings.Index(schema, "(")
	if open < 0 || !strings.HasSuffix(schema, ")") {
		return def, fmt.Errorf("%w: %q", ErrMalformedSchema, schema)
	}

	head := strings.Fields(schema[:open])
	if len(head) < 3 || !strings.EqualFold(head[0], "CREATE") {
		return def, fmt.Errorf("%w: %q", ErrMalformedSchema, schema)
	}
	def.Name = head[len(head)-1]

	body := schema[open+1 : len(schema)-1]
	for _, clause := range splitClauses(body) {
		switch {
		case strings.HasPrefix(clause, "FOREIGN KEY"):
			m := foreignKeyRe.FindStringSubmatch(clause)
			if m == nil {
				return def, fmt.Errorf("%w: %q", ErrMalformedSchema, clause)
			}
			def.ForeignKeys = append(def.ForeignKeys, ForeignKeyDef{
				Column:    m[1],
				RefTable:  m[2],
				RefColumn: m[3],
			})
		case strings.HasPrefix(clause, "PRIMARY KEY"):
			m := primaryKeyRe.FindStringSubmatch(clause)
			if m == nil {
				return def, fmt.Errorf("%w: %q", ErrMalformedSchema, clause)
			}
			def.PrimaryKey = strings.Split(m[1], ", ")
		case strings.HasPrefix(clause, "UNIQUE") || strings.HasPrefix(clause, "CHECK"):
			// table-level constraints the registry doesn't model
		default:
			name, constraints, _ := strings.Cut(clause, " ")
			def.Columns = append(def.Columns, ColumnDef{
				Name:        name,
				Constraints: constraints,
			})
			if m := referencesRe.FindStringSubmatch(constraints); m != nil {
				def.ForeignKeys = append(def.ForeignKeys, ForeignKeyDef{
					Column:    name,
					RefTable:  m[1],
					RefColumn: m[2],
				})
			}
		}
	}
	return def, nil
}

// splitClauses splits a CREATE TABLE body on commas at parenthesis depth
// zero, so "PRIMARY KEY (a, b)" stays one clause.
func splitClauses(body string) []string {
	var clauses []string
	depth, start := 0, 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				clauses = append(clauses, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(body[start:]); rest != "" {
		clauses = append(clauses, rest)
	}
	return clauses
}

// ParseColumnRef splits a "table.column" or "table(column)" reference.
func ParseColumnRef(ref string) (table, column string, err error) {
	switch {
	case strings.Contains(ref, "."):
		table, column, _ = strings.Cut(ref, ".")
	case strings.Contains(ref, "("):
		table, column, _ = strings.Cut(ref, "(")
		column = strings.TrimSuffix(column, ")")
	default:
		return "", "", fmt.Errorf("%w: %q", ErrBadColumnRef, ref)
	}
	if table == "" || column == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadColumnRef, ref)
	}
	return table, column, nil
}
