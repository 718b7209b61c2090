package garter

import "fmt"

// sqlType is the advisory SQL-level type of an expression or column. It
// exists only to pick operator variants (numeric + vs text ||, numeric % vs
// LIKE); it never changes what the engine stores or returns.
type sqlType int

const (
	typeUnknown sqlType = iota
	typeInt
	typeFloat
	typeText
	typeBlob
	typeBool
)

// Declared SQLite column types recognized by inference. Anything else fails
// with ErrUnknownColumnType.
var columnTypes = map[string]sqlType{
	"INTEGER": typeInt,
	"REAL":    typeFloat,
	"TEXT":    typeText,
	"BLOB":    typeBlob,
}

// Fixed function return-type table. Functions that return the type of their
// first argument (MAX, MIN, SUM, ABS, ...) are listed in passthroughFuncs.
var funcTypes = map[string]sqlType{
	"COUNT": typeInt, "LENGTH": typeInt, "RANDOM": typeInt,
	"INSTR": typeInt, "UNICODE": typeInt, "SIGN": typeInt,
	"CHANGES": typeInt, "TOTAL_CHANGES": typeInt,

	"AVG": typeFloat, "CEIL": typeFloat, "FLOOR": typeFloat,
	"ROUND": typeFloat, "TOTAL": typeFloat, "TRUNC": typeFloat,
	"SQRT": typeFloat, "LN": typeFloat, "LOG": typeFloat,
	"LOG2": typeFloat, "LOG10": typeFloat, "EXP": typeFloat,
	"POWER": typeFloat, "POW": typeFloat, "PI": typeFloat,
	"DEGREES": typeFloat, "RADIANS": typeFloat, "JULIANDAY": typeFloat,
	"SIN": typeFloat, "COS": typeFloat, "TAN": typeFloat,
	"ASIN": typeFloat, "ACOS": typeFloat, "ATAN": typeFloat,
	"ATAN2": typeFloat, "SINH": typeFloat, "COSH": typeFloat,
	"TANH": typeFloat, "ASINH": typeFloat, "ACOSH": typeFloat,
	"ATANH": typeFloat,

	"UPPER": typeText, "LOWER": typeText, "SUBSTR": typeText,
	"LTRIM": typeText, "RTRIM": typeText, "TRIM": typeText,
	"REPLACE": typeText, "TYPEOF": typeText, "HEX": typeText,
	"QUOTE": typeText, "CHAR": typeText, "GROUP_CONCAT": typeText,
	"SOUNDEX": typeText, "PRINTF": typeText, "STRFTIME": typeText,
	"DATE": typeText, "TIME": typeText, "DATETIME": typeText,

	"EXISTS": typeBool, "NOT EXISTS": typeBool, "LIKE": typeBool,
	"GLOB": typeBool, "LIKELY": typeBool, "UNLIKELY": typeBool,
}

var passthroughFuncs = map[string]bool{
	"MAX": true, "MIN": true, "SUM": true, "ABS": true,
	"IFNULL": true, "COALESCE": true, "NULLIF": true,
}

// Infix operators whose result is boolean.
var boolOps = map[string]bool{
	"LIKE": true, "AND": true, "OR": true, "=": true, "==": true,
	">": true, ">=": true, "<": true, "<=": true, "<>": true,
	"IN": true, "BETWEEN": true, "IS": true, "GLOB": true,
}

// typeOfValue infers the SQL type of a column, expression, or scalar.
// Unknown shapes return typeUnknown with a nil error; only a declared column
// type or function name outside the lookup tables is an error.
func typeOfValue(v any) (sqlType, error) {
	switch val := v.(type) {
	case *Column:
		return val.sqlType()
	case *Expr:
		return val.typeOf()
	case string:
		return typeText, nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return typeInt, nil
	case float32, float64:
		return typeFloat, nil
	case bool:
		return typeBool, nil
	default:
		return typeUnknown, nil
	}
}

func (e *Expr) typeOf() (sqlType, error) {
	if e.fn != "" {
		if t, ok := funcTypes[e.fn]; ok {
			return t, nil
		}
		if passthroughFuncs[e.fn] {
			if len(e.tokens) == 0 {
				return typeUnknown, nil
			}
			return tokenType(e.tokens[0])
		}
		return typeUnknown, fmt.Errorf("%w: %s", ErrUnknownFunctionType, e.fn)
	}

	if len(e.tokens) == 3 && e.tokens[1].kind == tokKeyword {
		op := e.tokens[1].text
		switch {
		case op == "/":
			return typeFloat, nil
		case op == "%":
			return typeInt, nil
		case boolOps[op]:
			return typeBool, nil
		case op == "*" || op == "+" || op == "-":
			lt, err := tokenType(e.tokens[0])
			if err != nil {
				return typeUnknown, err
			}
			rt, err := tokenType(e.tokens[2])
			if err != nil {
				return typeUnknown, err
			}
			if lt == typeFloat || rt == typeFloat {
				return typeFloat, nil
			}
			return typeInt, nil
		default:
			return tokenType(e.tokens[0])
		}
	}

	return typeUnknown, nil
}

func tokenType(t token) (sqlType, error) {
	switch t.kind {
	case tokColumn:
		return t.col.sqlType()
	case tokExpr:
		return t.expr.typeOf()
	default:
		// Keywords, placeholders, and sub-selects don't carry a usable type.
		return typeUnknown, nil
	}
}
