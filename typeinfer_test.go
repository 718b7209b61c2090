package garter

import "testing"

func TestColumnTypeInference(t *testing.T) {
	users, _ := testTables(t)

	tests := []struct {
		col  string
		want sqlType
	}{
		{"id", typeInt},
		{"age", typeInt},
		{"first_name", typeText},
	}
	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			got, err := users.C(tt.col).sqlType()
			if err != nil {
				t.Fatalf("sqlType() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("sqlType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColumnTypeUnknownDeclaration(t *testing.T) {
	weird := newTable("weird", nil)
	weird.addColumn("v", "VARCHAR(40)")

	_, err := weird.C("v").sqlType()
	if !IsUnknownColumnTypeErr(err) {
		t.Fatalf("sqlType() error = %v, want ErrUnknownColumnType", err)
	}
}

func TestExprTypeInference(t *testing.T) {
	users, _ := testTables(t)

	tests := []struct {
		name string
		expr *Expr
		want sqlType
	}{
		{"division is float", users.C("age").Div(2), typeFloat},
		{"modulo is int", users.C("age").Mod(10), typeInt},
		{"comparison is bool", users.C("age").Gt(21), typeBool},
		{"like is bool", users.C("first_name").Like("J%"), typeBool},
		{"int product is int", users.C("age").Mul(users.C("id")), typeInt},
		{"count is int", Count(users.C("id")), typeInt},
		{"avg is float", Avg(users.C("age")), typeFloat},
		{"upper is text", Upper(users.C("first_name")), typeText},
		{"max passes through", Max(users.C("age")), typeInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.expr.typeOf()
			if err != nil {
				t.Fatalf("typeOf() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("typeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExprTypeUnknownFunction(t *testing.T) {
	users, _ := testTables(t)

	_, err := Func("MYSTERY_FN", users.C("age")).typeOf()
	if !IsUnknownFunctionTypeErr(err) {
		t.Fatalf("typeOf() error = %v, want ErrUnknownFunctionType", err)
	}
}

func TestScalarTypeInference(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want sqlType
	}{
		{"string", "x", typeText},
		{"int", 7, typeInt},
		{"int64", int64(7), typeInt},
		{"float", 1.5, typeFloat},
		{"bool", true, typeBool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := typeOfValue(tt.val)
			if err != nil {
				t.Fatalf("typeOfValue() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("typeOfValue(%v) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}
