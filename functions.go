package garter

// SQL core, math, aggregate, and date/time functions, exposed as expression
// constructors. Arguments follow the usual expression rules: columns and
// expressions are merged by reference, scalars are parameterized.
//
// Aggregates accept a DISTINCT prefix through the Distinct method:
//
//	Count(users.C("last_name")).Distinct() // COUNT(DISTINCT users.last_name)
//
// For the semantics of each function see the SQLite documentation,
// https://sqlite.org/lang_corefunc.html.

// Count renders COUNT(args...); with no arguments it renders COUNT(*).
func Count(args ...any) *Expr {
	if len(args) == 0 {
		args = []any{"*"}
	}
	return newExpr("COUNT", "", args...)
}

// Sum renders SUM(x).
func Sum(x any) *Expr { return Func("SUM", x) }

// Total renders TOTAL(x).
func Total(x any) *Expr { return Func("TOTAL", x) }

// Avg renders AVG(x).
func Avg(x any) *Expr { return Func("AVG", x) }

// Min renders MIN(args...).
func Min(args ...any) *Expr { return Func("MIN", args...) }

// Max renders MAX(args...).
func Max(args ...any) *Expr { return Func("MAX", args...) }

// GroupConcat renders GROUP_CONCAT(x) or GROUP_CONCAT(x, sep).
func GroupConcat(x any, sep ...any) *Expr {
	if len(sep) > 0 {
		return Func("GROUP_CONCAT", x, sep[0])
	}
	return Func("GROUP_CONCAT", x)
}

// Abs renders ABS(x).
func Abs(x any) *Expr { return Func("ABS", x) }

// Round renders ROUND(x) or ROUND(x, digits).
func Round(x any, digits ...any) *Expr {
	if len(digits) > 0 {
		return Func("ROUND", x, digits[0])
	}
	return Func("ROUND", x)
}

// Ceil renders CEIL(x).
func Ceil(x any) *Expr { return Func("CEIL", x) }

// Floor renders FLOOR(x).
func Floor(x any) *Expr { return Func("FLOOR", x) }

// Trunc renders TRUNC(x).
func Trunc(x any) *Expr { return Func("TRUNC", x) }

// Sign renders SIGN(x).
func Sign(x any) *Expr { return Func("SIGN", x) }

// Sqrt renders SQRT(x).
func Sqrt(x any) *Expr { return Func("SQRT", x) }

// Ln renders LN(x).
func Ln(x any) *Expr { return Func("LN", x) }

// Log renders LOG(x) or LOG(base, x).
func Log(x any, y ...any) *Expr {
	if len(y) > 0 {
		return Func("LOG", x, y[0])
	}
	return Func("LOG", x)
}

// Log2 renders LOG2(x).
func Log2(x any) *Expr { return Func("LOG2", x) }

// Log10 renders LOG10(x).
func Log10(x any) *Expr { return Func("LOG10", x) }

// Exp renders EXP(x).
func Exp(x any) *Expr { return Func("EXP", x) }

// Power renders POWER(x, y).
func Power(x, y any) *Expr { return Func("POWER", x, y) }

// Mod renders MOD(x, y).
func Mod(x, y any) *Expr { return Func("MOD", x, y) }

// Pi renders PI().
func Pi() *Expr { return Func("PI") }

// Degrees renders DEGREES(x).
func Degrees(x any) *Expr { return Func("DEGREES", x) }

// Radians renders RADIANS(x).
func Radians(x any) *Expr { return Func("RADIANS", x) }

// Sin renders SIN(x).
func Sin(x any) *Expr { return Func("SIN", x) }

// Cos renders COS(x).
func Cos(x any) *Expr { return Func("COS", x) }

// Tan renders TAN(x).
func Tan(x any) *Expr { return Func("TAN", x) }

// Asin renders ASIN(x).
func Asin(x any) *Expr { return Func("ASIN", x) }

// Acos renders ACOS(x).
func Acos(x any) *Expr { return Func("ACOS", x) }

// Atan renders ATAN(x).
func Atan(x any) *Expr { return Func("ATAN", x) }

// Atan2 renders ATAN2(x, y).
func Atan2(x, y any) *Expr { return Func("ATAN2", x, y) }

// Sinh renders SINH(x).
func Sinh(x any) *Expr { return Func("SINH", x) }

// Cosh renders COSH(x).
func Cosh(x any) *Expr { return Func("COSH", x) }

// Tanh renders TANH(x).
func Tanh(x any) *Expr { return Func("TANH", x) }

// Asinh renders ASINH(x).
func Asinh(x any) *Expr { return Func("ASINH", x) }

// Acosh renders ACOSH(x).
func Acosh(x any) *Expr { return Func("ACOSH", x) }

// Atanh renders ATANH(x).
func Atanh(x any) *Expr { return Func("ATANH", x) }

// Upper renders UPPER(x).
func Upper(x any) *Expr { return Func("UPPER", x) }

// Lower renders LOWER(x).
func Lower(x any) *Expr { return Func("LOWER", x) }

// Length renders LENGTH(x).
func Length(x any) *Expr { return Func("LENGTH", x) }

// Substr renders SUBSTR(x, start) or SUBSTR(x, start, length).
func Substr(x, start any, length ...any) *Expr {
	if len(length) > 0 {
		return Func("SUBSTR", x, start, length[0])
	}
	return Func("SUBSTR", x, start)
}

// Replace renders REPLACE(x, find, repl).
func Replace(x, find, repl any) *Expr { return Func("REPLACE", x, find, repl) }

// Trim renders TRIM(x) or TRIM(x, chars).
func Trim(x any, chars ...any) *Expr {
	if len(chars) > 0 {
		return Func("TRIM", x, chars[0])
	}
	return Func("TRIM", x)
}

// LTrim renders LTRIM(x) or LTRIM(x, chars).
func LTrim(x any, chars ...any) *Expr {
	if len(chars) > 0 {
		return Func("LTRIM", x, chars[0])
	}
	return Func("LTRIM", x)
}

// RTrim renders RTRIM(x) or RTRIM(x, chars).
func RTrim(x any, chars ...any) *Expr {
	if len(chars) > 0 {
		return Func("RTRIM", x, chars[0])
	}
	return Func("RTRIM", x)
}

// Instr renders INSTR(x, y).
func Instr(x, y any) *Expr { return Func("INSTR", x, y) }

// Hex renders HEX(x).
func Hex(x any) *Expr { return Func("HEX", x) }

// Quote renders QUOTE(x).
func Quote(x any) *Expr { return Func("QUOTE", x) }

// Char renders CHAR(args...).
func Char(args ...any) *Expr { return Func("CHAR", args...) }

// Unicode renders UNICODE(x).
func Unicode(x any) *Expr { return Func("UNICODE", x) }

// Printf renders PRINTF(format, args...).
func Printf(format any, args ...any) *Expr {
	return Func("PRINTF", append([]any{format}, args...)...)
}

// Soundex renders SOUNDEX(x).
func Soundex(x any) *Expr { return Func("SOUNDEX", x) }

// Glob renders GLOB(pattern, x).
func Glob(args ...any) *Expr { return Func("GLOB", args...) }

// Like renders LIKE(pattern, x) or LIKE(pattern, x, escape).
func Like(x, y any, escape ...any) *Expr {
	if len(escape) > 0 {
		return Func("LIKE", x, y, escape[0])
	}
	return Func("LIKE", x, y)
}

// Date renders DATE(timeValue, modifiers...).
func Date(timeValue any, modifiers ...any) *Expr {
	return Func("DATE", append([]any{timeValue}, modifiers...)...)
}

// Time renders TIME(timeValue, modifiers...).
func Time(timeValue any, modifiers ...any) *Expr {
	return Func("TIME", append([]any{timeValue}, modifiers...)...)
}

// DateTime renders DATETIME(timeValue, modifiers...).
func DateTime(timeValue any, modifiers ...any) *Expr {
	return Func("DATETIME", append([]any{timeValue}, modifiers...)...)
}

// JulianDay renders JULIANDAY(timeValue, modifiers...).
func JulianDay(timeValue any, modifiers ...any) *Expr {
	return Func("JULIANDAY", append([]any{timeValue}, modifiers...)...)
}

// Strftime renders STRFTIME(format, timeValue, modifiers...).
func Strftime(format, timeValue any, modifiers ...any) *Expr {
	return Func("STRFTIME", append([]any{format, timeValue}, modifiers...)...)
}

// Coalesce renders COALESCE(args...).
func Coalesce(args ...any) *Expr { return Func("COALESCE", args...) }

// IfNull renders IFNULL(x, y).
func IfNull(x, y any) *Expr { return Func("IFNULL", x, y) }

// IIf renders IIF(cond, then, else).
func IIf(cond, then, els any) *Expr { return Func("IIF", cond, then, els) }

// NullIf renders NULLIF(x, y).
func NullIf(x, y any) *Expr { return Func("NULLIF", x, y) }

// Typeof renders TYPEOF(x).
func Typeof(x any) *Expr { return Func("TYPEOF", x) }

// Random renders RANDOM().
func Random() *Expr { return Func("RANDOM") }

// RandomBlob renders RANDOMBLOB(n).
func RandomBlob(n any) *Expr { return Func("RANDOMBLOB", n) }

// ZeroBlob renders ZEROBLOB(n).
func ZeroBlob(n any) *Expr { return Func("ZEROBLOB", n) }

// Changes renders CHANGES().
func Changes() *Expr { return Func("CHANGES") }

// TotalChanges renders TOTAL_CHANGES().
func TotalChanges() *Expr { return Func("TOTAL_CHANGES") }

// Likely renders LIKELY(x).
func Likely(x any) *Expr { return Func("LIKELY", x) }

// Unlikely renders UNLIKELY(x).
func Unlikely(x any) *Expr { return Func("UNLIKELY", x) }

// Likelihood renders LIKELIHOOD(x, p).
func Likelihood(x, p any) *Expr { return Func("LIKELIHOOD", x, p) }

// SqliteVersion renders SQLITE_VERSION().
func SqliteVersion() *Expr { return Func("SQLITE_VERSION") }
