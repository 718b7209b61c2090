package garter

import "errors"

// Sentinel errors for failures raised while building or rendering statements.
// All of these are local construction-time failures: they surface before any
// SQL reaches the engine. Errors returned by the engine itself (constraint
// violations, closed connections, syntax errors) pass through unmodified.
//
// Expressions and statement builders are chainable, so a failure is carried
// on the value and reported from Err, SQL, or the execute methods. Use the
// Is*Err helper functions to check for specific errors.
var (
	// ErrUnsupportedOperand is returned when an expression argument has a Go
	// type with no defined SQL rendering. Only numeric values, strings,
	// booleans, nil, and other expressions, columns, tables, and statements
	// can appear in an expression.
	ErrUnsupportedOperand = errors.New("garter: unsupported operand type")

	// ErrTypeMismatch is returned when an arithmetic or string operator is
	// applied to operands whose SQL types cannot be inferred well enough to
	// pick an operator variant (for example Add, which renders + for numbers
	// and || for strings).
	ErrTypeMismatch = errors.New("garter: operand type mismatch")

	// ErrNotInvertible is returned when Not is called on an expression whose
	// shape or operator has no known inverse.
	ErrNotInvertible = errors.New("garter: expression not invertible")

	// ErrUnknownColumnType is returned when type inference encounters a
	// declared SQL type outside INTEGER, REAL, TEXT, and BLOB.
	ErrUnknownColumnType = errors.New("garter: unknown column type")

	// ErrUnknownFunctionType is returned when type inference encounters a
	// SQL function with no entry in the return-type table.
	ErrUnknownFunctionType = errors.New("garter: unknown function return type")

	// ErrUnresolvableJoin is returned when the join resolver cannot find a
	// foreign-key path from any available table to a required table. The
	// caller must supply an explicit join condition.
	ErrUnresolvableJoin = errors.New("garter: cannot resolve implicit join")

	// ErrUnknownColumn is returned when a string column reference does not
	// resolve against the statement's table or the database.
	ErrUnknownColumn = errors.New("garter: unknown column")

	// ErrUnknownTable is returned when a table name does not resolve against
	// the database registry.
	ErrUnknownTable = errors.New("garter: unknown table")

	// ErrDetachedTable is returned when a table that has not been registered
	// with a database is asked to execute a statement.
	ErrDetachedTable = errors.New("garter: table not attached to a database")

	// ErrMalformedStatement is returned when a statement cannot render a
	// complete SQL string, for example an insert with no values or HAVING
	// without GROUP BY.
	ErrMalformedStatement = errors.New("garter: malformed statement")
)

// IsUnsupportedOperandErr returns true if err is or wraps ErrUnsupportedOperand.
func IsUnsupportedOperandErr(err error) bool {
	return errors.Is(err, ErrUnsupportedOperand)
}

// IsTypeMismatchErr returns true if err is or wraps ErrTypeMismatch.
func IsTypeMismatchErr(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsNotInvertibleErr returns true if err is or wraps ErrNotInvertible.
func IsNotInvertibleErr(err error) bool {
	return errors.Is(err, ErrNotInvertible)
}

// IsUnknownColumnTypeErr returns true if err is or wraps ErrUnknownColumnType.
func IsUnknownColumnTypeErr(err error) bool {
	return errors.Is(err, ErrUnknownColumnType)
}

// IsUnknownFunctionTypeErr returns true if err is or wraps ErrUnknownFunctionType.
func IsUnknownFunctionTypeErr(err error) bool {
	return errors.Is(err, ErrUnknownFunctionType)
}

// IsUnresolvableJoinErr returns true if err is or wraps ErrUnresolvableJoin.
func IsUnresolvableJoinErr(err error) bool {
	return errors.Is(err, ErrUnresolvableJoin)
}

// IsUnknownColumnErr returns true if err is or wraps ErrUnknownColumn.
func IsUnknownColumnErr(err error) bool {
	return errors.Is(err, ErrUnknownColumn)
}

// IsUnknownTableErr returns true if err is or wraps ErrUnknownTable.
func IsUnknownTableErr(err error) bool {
	return errors.Is(err, ErrUnknownTable)
}

// IsDetachedTableErr returns true if err is or wraps ErrDetachedTable.
func IsDetachedTableErr(err error) bool {
	return errors.Is(err, ErrDetachedTable)
}

// IsMalformedStatementErr returns true if err is or wraps ErrMalformedStatement.
func IsMalformedStatementErr(err error) bool {
	return errors.Is(err, ErrMalformedStatement)
}
