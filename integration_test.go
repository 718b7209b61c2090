package garter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/garterdb/garter"
)

// openTestDB creates an in-memory database with a users/posts schema and a
// few rows.
func openTestDB(t *testing.T) (*garter.Database, *garter.Table, *garter.Table) {
	t.Helper()
	ctx := context.Background()

	db, err := garter.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users, err := db.CreateTable(ctx, "users", garter.DefineTable().
		Column("id", "INTEGER PRIMARY KEY").
		Column("first_name", "TEXT").
		Column("last_name", "TEXT").
		Column("age", "INTEGER"))
	require.NoError(t, err)

	posts, err := db.CreateTable(ctx, "posts", garter.DefineTable().
		Column("id", "INTEGER PRIMARY KEY").
		Column("user_id", "INTEGER NOT NULL").
		Column("text", "TEXT").
		ForeignKey("user_id", users.C("id")))
	require.NoError(t, err)

	_, err = users.Insert(map[string]any{
		"id": 1, "first_name": "Jerry", "last_name": "Smith", "age": 35,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = users.Insert(map[string]any{
		"id": 2, "first_name": "Beth", "last_name": "Smith", "age": 34,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = users.Insert(map[string]any{
		"id": 3, "first_name": "Summer", "last_name": "Smith", "age": 17,
	}).Exec(ctx)
	require.NoError(t, err)

	err = posts.InsertMany(
		[]string{"id", "user_id", "text"},
		[][]any{
			{1, 1, "it's raining again"},
			{2, 2, "surgery went fine"},
			{3, 3, "school is boring"},
			{4, 1, "still raining"},
		},
	).Exec(ctx)
	require.NoError(t, err)

	return db, users, posts
}

func TestOpenLoadsExistingSchema(t *testing.T) {
	_, users, posts := openTestDB(t)

	assert.True(t, users.Has("first_name"))
	assert.True(t, posts.Has("user_id"))

	fk, err := posts.C("user_id").ForeignKey()
	require.NoError(t, err)
	assert.Equal(t, "users.id", fk.String())
}

func TestColumnMetadata(t *testing.T) {
	_, users, posts := openTestDB(t)

	assert.Equal(t, "INTEGER", users.C("id").DeclaredType())
	assert.True(t, users.C("id").PrimaryKey())
	assert.True(t, posts.C("user_id").NotNull())
	assert.False(t, users.C("first_name").NotNull())
}

func TestSelectWithImplicitForwardJoin(t *testing.T) {
	ctx := context.Background()
	_, users, posts := openTestDB(t)

	// posts -> users via the foreign key on posts.user_id
	rows, err := posts.FetchAll(ctx,
		[]any{posts.C("text")},
		users.C("first_name").Eq("Jerry"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	var texts []any
	for _, r := range rows {
		texts = append(texts, r[0])
	}
	assert.ElementsMatch(t, []any{"it's raining again", "still raining"}, texts)
}

func TestSelectWithImplicitReverseJoin(t *testing.T) {
	ctx := context.Background()
	_, users, posts := openTestDB(t)

	// users -> posts walks the same foreign key backwards
	names, err := users.C("first_name").FetchAll(ctx,
		posts.C("text").Like("%raining%"))
	require.NoError(t, err)
	assert.Equal(t, []any{"Jerry", "Jerry"}, names)
}

func TestFetchOne(t *testing.T) {
	ctx := context.Background()
	_, users, _ := openTestDB(t)

	name, err := users.C("first_name").FetchOne(ctx, users.C("age").Lt(18))
	require.NoError(t, err)
	assert.Equal(t, "Summer", name)

	missing, err := users.C("first_name").FetchOne(ctx, users.C("age").Gt(200))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	_, users, posts := openTestDB(t)

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = posts.Count(ctx, posts.C("text").Like("%raining%"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestInversionPartitionsRows(t *testing.T) {
	ctx := context.Background()
	_, users, _ := openTestDB(t)

	cond := users.C("age").Ge(18)

	adults, err := users.Count(ctx, cond)
	require.NoError(t, err)
	minors, err := users.Count(ctx, cond.Not())
	require.NoError(t, err)
	total, err := users.Count(ctx)
	require.NoError(t, err)

	// A condition and its inverse partition the table.
	assert.Equal(t, total, adults+minors)
	assert.EqualValues(t, 2, adults)
	assert.EqualValues(t, 1, minors)
}

func TestConjunctionInversionMatchesDeMorgan(t *testing.T) {
	ctx := context.Background()
	_, users, _ := openTestDB(t)

	young := users.C("age").Lt(35)
	sName := users.C("first_name").Like("S%")
	both := young.And(sName)

	// NOT (young AND sName) must select the same rows as
	// (NOT young) OR (NOT sName).
	inverted, err := users.C("first_name").FetchAll(ctx, both.Not())
	require.NoError(t, err)
	expanded, err := users.C("first_name").FetchAll(ctx, young.Not().Or(sName.Not()))
	require.NoError(t, err)
	assert.ElementsMatch(t, expanded, inverted)
	assert.ElementsMatch(t, []any{"Jerry", "Beth"}, inverted)

	matched, err := users.C("first_name").FetchAll(ctx, both)
	require.NoError(t, err)
	assert.Equal(t, []any{"Summer"}, matched)

	total, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, total, int64(len(matched)+len(inverted)))
}

func TestUpdateWithJoin(t *testing.T) {
	ctx := context.Background()
	_, users, posts := openTestDB(t)

	_, err := posts.Update(map[string]any{"text": "[redacted]"}).
		Where(users.C("first_name").Eq("Summer")).
		Exec(ctx)
	require.NoError(t, err)

	text, err := posts.C("text").FetchOne(ctx, posts.C("user_id").Eq(3))
	require.NoError(t, err)
	assert.Equal(t, "[redacted]", text)

	// Other rows untouched
	n, err := posts.Count(ctx, posts.C("text").Eq("[redacted]"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpdateColumnShortcut(t *testing.T) {
	ctx := context.Background()
	_, users, _ := openTestDB(t)

	_, err := users.C("age").Update(users.C("age").Add(1)).
		Where(users.C("first_name").Eq("Summer")).
		Exec(ctx)
	require.NoError(t, err)

	age, err := users.C("age").FetchOne(ctx, users.C("first_name").Eq("Summer"))
	require.NoError(t, err)
	assert.EqualValues(t, 18, age)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	_, _, posts := openTestDB(t)

	res, err := posts.Delete().Where(posts.C("user_id").Eq(1)).Exec(ctx)
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	n, err := posts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestInsertConflictIgnore(t *testing.T) {
	ctx := context.Background()
	_, users, _ := openTestDB(t)

	_, err := users.Insert(map[string]any{"id": 1, "first_name": "Dup"}).
		Or(garter.OrIgnore).
		Exec(ctx)
	require.NoError(t, err)

	name, err := users.C("first_name").FetchOne(ctx, users.C("id").Eq(1))
	require.NoError(t, err)
	assert.Equal(t, "Jerry", name)
}

func TestSubSelect(t *testing.T) {
	ctx := context.Background()
	_, users, posts := openTestDB(t)

	sub := posts.Select(posts.C("user_id")).
		Where(posts.C("text").Like("%raining%"))
	names, err := users.C("first_name").FetchAll(ctx, users.C("id").In(sub))
	require.NoError(t, err)
	assert.Equal(t, []any{"Jerry"}, names)
}

func TestCompoundSelect(t *testing.T) {
	ctx := context.Background()
	_, users, _ := openTestDB(t)

	young := users.Select(users.C("first_name")).Where(users.C("age").Lt(18))
	old := users.Select(users.C("first_name")).Where(users.C("age").Gt(34))
	rows, err := young.Union(old).Query(ctx)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.ElementsMatch(t, []string{"Jerry", "Summer"}, names)
}

func TestGroupByHaving(t *testing.T) {
	ctx := context.Background()
	_, users, posts := openTestDB(t)

	// Users with more than one post.
	stmt := users.Select(users.C("first_name")).
		GroupBy(users.C("id")).
		Having(garter.Count(posts.C("id")).Gt(1))
	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Jerry"}, names)
}

func TestAddAndDropColumn(t *testing.T) {
	ctx := context.Background()
	_, users, _ := openTestDB(t)

	require.NoError(t, users.AddColumn(ctx, "email", "TEXT"))
	assert.True(t, users.Has("email"))

	_, err := users.Update(map[string]any{"email": "jerry@example.com"}).
		Where(users.C("id").Eq(1)).
		Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, users.DropColumn(ctx, "email"))
	assert.False(t, users.Has("email"))
	_, err = users.Select("email").SQL()
	assert.Error(t, err)
}

func TestDropTable(t *testing.T) {
	ctx := context.Background()
	db, _, _ := openTestDB(t)

	require.NoError(t, db.DropTable(ctx, "posts"))
	_, err := db.TableByName("posts")
	assert.True(t, garter.IsUnknownTableErr(err))
}

func TestReopenSeesSchema(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/reopen.db"

	db, err := garter.Open(path)
	require.NoError(t, err)
	_, err = db.CreateTable(ctx, "things", garter.DefineTable().
		Column("id", "INTEGER PRIMARY KEY").
		Column("label", "TEXT"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := garter.Open(path)
	require.NoError(t, err)
	defer func() { _ = db2.Close() }()

	things, err := db2.TableByName("things")
	require.NoError(t, err)
	assert.True(t, things.Has("label"))
}

func TestRawExecute(t *testing.T) {
	ctx := context.Background()
	db, _, _ := openTestDB(t)

	rows, err := db.Execute(ctx, "SELECT COUNT(*) FROM users", nil)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, 3, n)
}

func TestChainedForeignKeys(t *testing.T) {
	ctx := context.Background()
	db, users, posts := openTestDB(t)

	comments, err := db.CreateTable(ctx, "comments", garter.DefineTable().
		Column("id", "INTEGER PRIMARY KEY").
		Column("post_id", "INTEGER NOT NULL").
		Column("body", "TEXT").
		ForeignKey("post_id", posts.C("id")))
	require.NoError(t, err)

	err = comments.InsertMany(
		[]string{"id", "post_id", "body"},
		[][]any{{1, 1, "stay dry"}, {2, 3, "hang in there"}},
	).Exec(ctx)
	require.NoError(t, err)

	// comments -> posts -> users, two implicit hops
	bodies, err := comments.C("body").FetchAll(ctx,
		users.C("first_name").Eq("Jerry"))
	require.NoError(t, err)
	assert.Equal(t, []any{"stay dry"}, bodies)
}

func TestStringForeignKeyReference(t *testing.T) {
	ctx := context.Background()
	db, users, _ := openTestDB(t)

	badges, err := db.CreateTable(ctx, "badges", garter.DefineTable().
		Column("id", "INTEGER PRIMARY KEY").
		Column("user_id", "INTEGER").
		Column("label", "TEXT").
		ForeignKey("user_id", "users(id)"))
	require.NoError(t, err)

	fk, err := badges.C("user_id").ForeignKey()
	require.NoError(t, err)
	assert.Equal(t, "users.id", fk.String())

	_, err = badges.Insert(map[string]any{"id": 1, "user_id": 2, "label": "mvp"}).Exec(ctx)
	require.NoError(t, err)

	labels, err := badges.C("label").FetchAll(ctx, users.C("first_name").Eq("Beth"))
	require.NoError(t, err)
	assert.Equal(t, []any{"mvp"}, labels)
}
