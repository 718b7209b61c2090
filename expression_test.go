package garter

import (
	"regexp"
	"strings"
	"testing"
)

// testTables builds a detached users/posts pair with the foreign key
// posts.user_id -> users.id.
func testTables(t *testing.T) (*Table, *Table) {
	t.Helper()
	users := newTable("users", nil)
	users.addColumn("id", "INTEGER PRIMARY KEY")
	users.addColumn("first_name", "TEXT")
	users.addColumn("last_name", "TEXT")
	users.addColumn("age", "INTEGER")

	posts := newTable("posts", nil)
	posts.addColumn("id", "INTEGER PRIMARY KEY")
	posts.addColumn("user_id", "INTEGER NOT NULL")
	posts.addColumn("text", "TEXT")
	posts.addForeignKey("user_id", users.cols["id"], "")
	return users, posts
}

func TestExprParameterizesValues(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("age").Gt(21)
	if err := e.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := e.Render(); got != "users.age > 21" {
		t.Errorf("Render() = %q, want %q", got, "users.age > 21")
	}
	if !regexp.MustCompile(`^users\.age > :p\d+$`).MatchString(e.String()) {
		t.Errorf("String() = %q, want placeholder form", e.String())
	}
	if len(e.Params()) != 1 {
		t.Errorf("got %d params, want 1", len(e.Params()))
	}
	for _, v := range e.Params() {
		if v != 21 {
			t.Errorf("bound value = %v, want 21", v)
		}
	}
}

func TestExprStringValuesNeverInline(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("last_name").Eq("Robert'); DROP TABLE users;--")
	if strings.Contains(e.String(), "DROP") {
		t.Fatalf("string value leaked into SQL: %q", e.String())
	}
	if len(e.Params()) != 1 {
		t.Errorf("got %d params, want 1", len(e.Params()))
	}
}

func TestExprKeywordsPassThrough(t *testing.T) {
	e := NewExpr("NOT", nil)
	if got := e.String(); got != "NOT NULL" {
		t.Errorf("String() = %q, want %q", got, "NOT NULL")
	}
	if len(e.Params()) != 0 {
		t.Errorf("keywords must not bind params, got %d", len(e.Params()))
	}
}

func TestExprUnsupportedOperand(t *testing.T) {
	e := NewExpr(struct{ x int }{1})
	if !IsUnsupportedOperandErr(e.Err()) {
		t.Fatalf("Err() = %v, want ErrUnsupportedOperand", e.Err())
	}
}

func TestExprUnknownColumn(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("nope").Eq(1)
	if !IsUnknownColumnErr(e.Err()) {
		t.Fatalf("Err() = %v, want ErrUnknownColumn", e.Err())
	}
}

func TestExprTablesDeduplicated(t *testing.T) {
	users, posts := testTables(t)

	e := users.C("age").Gt(21).
		And(users.C("first_name").Eq("Jerry")).
		And(posts.C("text").Like("%x%"))
	tabs := e.Tables()
	if len(tabs) != 2 {
		t.Fatalf("got %d tables, want 2", len(tabs))
	}
	if tabs[0] != users || tabs[1] != posts {
		t.Errorf("tables out of first-reference order: %v", tabs)
	}
}

func TestExprReuseKeepsBindings(t *testing.T) {
	users, _ := testTables(t)

	cond := users.C("age").Ge(18)
	a := cond.And(users.C("first_name").Eq("A"))
	b := cond.And(users.C("first_name").Eq("B"))

	for k, v := range cond.Params() {
		if a.Params()[k] != v || b.Params()[k] != v {
			t.Errorf("shared sub-expression binding %q lost on merge", k)
		}
	}
}

func TestExprOrParenthesizes(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("age").Lt(13).Or(users.C("age").Gt(64))
	if got := e.Render(); got != "(users.age < 13) OR (users.age > 64)" {
		t.Errorf("Render() = %q", got)
	}
}

func TestExprIn(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("first_name").In("Jerry", "Beth")
	if got := e.Render(); got != "users.first_name IN ('Jerry', 'Beth')" {
		t.Errorf("Render() = %q", got)
	}
}

func TestExprBetween(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("age").Between(13, 19)
	if got := e.Render(); got != "users.age BETWEEN 13 AND 19" {
		t.Errorf("Render() = %q", got)
	}
}

func TestExprIsNull(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("last_name").Is(nil)
	if got := e.Render(); got != "users.last_name IS NULL" {
		t.Errorf("Render() = %q", got)
	}
}

func TestFuncRendering(t *testing.T) {
	users, _ := testTables(t)

	e := Func("SUBSTR", users.C("first_name"), 1, 3)
	if got := e.Render(); got != "SUBSTR(users.first_name, 1, 3)" {
		t.Errorf("Render() = %q", got)
	}
}

func TestCountStar(t *testing.T) {
	if got := Count().String(); got != "COUNT(*)" {
		t.Errorf("Count() = %q, want COUNT(*)", got)
	}
}

func TestDistinctPrefix(t *testing.T) {
	users, _ := testTables(t)

	e := Count(users.C("last_name").Distinct())
	if got := e.Render(); got != "COUNT(DISTINCT users.last_name)" {
		t.Errorf("Render() = %q", got)
	}
}

func TestNot(t *testing.T) {
	users, posts := testTables(t)

	tests := []struct {
		name string
		expr *Expr
		want string
	}{
		{
			name: "eq to ne",
			expr: users.C("age").Eq(21),
			want: "users.age <> 21",
		},
		{
			name: "gt to le",
			expr: users.C("age").Gt(21),
			want: "users.age <= 21",
		},
		{
			name: "lt to ge",
			expr: users.C("age").Lt(21),
			want: "users.age >= 21",
		},
		{
			name: "like to not like",
			expr: posts.C("text").Like("%rain%"),
			want: "posts.text NOT LIKE '%rain%'",
		},
		{
			name: "in to not in",
			expr: users.C("first_name").In("Jerry", "Beth"),
			want: "users.first_name NOT IN ('Jerry', 'Beth')",
		},
		{
			name: "between to not between",
			expr: users.C("age").Between(13, 19),
			want: "users.age NOT BETWEEN 13 AND 19",
		},
		{
			name: "is to is not",
			expr: users.C("last_name").Is(nil),
			want: "users.last_name IS NOT NULL",
		},
		{
			name: "de morgan and",
			expr: users.C("age").Gt(21).And(posts.C("text").Like("%x%")),
			want: "(users.age <= 21) OR (posts.text NOT LIKE '%x%')",
		},
		{
			name: "de morgan or",
			expr: users.C("age").Gt(21).Or(posts.C("text").Like("%x%")),
			want: "users.age <= 21 AND posts.text NOT LIKE '%x%'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.expr.Not()
			if err := inv.Err(); err != nil {
				t.Fatalf("Not() error: %v", err)
			}
			if got := inv.Render(); got != tt.want {
				t.Errorf("Not().Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotRoundTrips(t *testing.T) {
	users, _ := testTables(t)

	orig := users.C("age").Eq(21)
	back := orig.Not().Not()
	if back.Render() != orig.Render() {
		t.Errorf("double inversion: %q, want %q", back.Render(), orig.Render())
	}
}

func TestNotLeavesOriginalIntact(t *testing.T) {
	users, _ := testTables(t)

	orig := users.C("age").Eq(21)
	before := orig.Render()
	_ = orig.Not()
	if orig.Render() != before {
		t.Errorf("Not() mutated its receiver: %q", orig.Render())
	}
}

func TestNotUninvertible(t *testing.T) {
	users, _ := testTables(t)

	inv := users.C("age").Add(1).Not()
	if !IsNotInvertibleErr(inv.Err()) {
		t.Fatalf("Err() = %v, want ErrNotInvertible", inv.Err())
	}
}

func TestAddDispatch(t *testing.T) {
	users, _ := testTables(t)

	t.Run("numeric plus", func(t *testing.T) {
		e := users.C("age").Add(1)
		if got := e.Render(); got != "users.age + 1" {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("text concatenation", func(t *testing.T) {
		e := users.C("first_name").Add(users.C("last_name"))
		if got := e.Render(); got != "users.first_name || users.last_name" {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("text plus string literal", func(t *testing.T) {
		e := users.C("last_name").Add(", Esq.")
		if got := e.Render(); got != "users.last_name || ', Esq.'" {
			t.Errorf("Render() = %q", got)
		}
	})
}

func TestModDispatch(t *testing.T) {
	users, _ := testTables(t)

	t.Run("numeric modulo", func(t *testing.T) {
		e := users.C("age").Mod(10)
		if got := e.Render(); got != "users.age % 10" {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("text like", func(t *testing.T) {
		e := users.C("first_name").Mod("J%")
		if got := e.Render(); got != "users.first_name LIKE 'J%'" {
			t.Errorf("Render() = %q", got)
		}
	})
}

func TestPlaceholderNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		name := nextPlaceholder()
		if seen[name] {
			t.Fatalf("placeholder %q repeated", name)
		}
		seen[name] = true
	}
}

func TestPlaceholderNamesBindable(t *testing.T) {
	// database/sql rejects named arguments that do not begin with a letter.
	valid := regexp.MustCompile(`^p\d+$`)
	for i := 0; i < 10; i++ {
		if name := nextPlaceholder(); !valid.MatchString(name) {
			t.Fatalf("placeholder %q is not a bindable name", name)
		}
	}
}

func TestPlaceholderConcurrency(t *testing.T) {
	const workers = 8
	const perWorker = 200

	out := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		go func() {
			for i := 0; i < perWorker; i++ {
				out <- nextPlaceholder()
			}
		}()
	}

	seen := map[string]bool{}
	for i := 0; i < workers*perWorker; i++ {
		name := <-out
		if seen[name] {
			t.Fatalf("placeholder %q issued twice", name)
		}
		seen[name] = true
	}
}

func TestRenderQuotesStrings(t *testing.T) {
	users, _ := testTables(t)

	e := users.C("last_name").Eq("O'Brien")
	if got := e.Render(); got != "users.last_name = 'O''Brien'" {
		t.Errorf("Render() = %q", got)
	}
}
