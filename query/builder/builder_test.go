package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/builder"
	"github.com/satishbabariya/sqlorm/query/columns"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/query/errs"
)

func TestBuilderOperators(t *testing.T) {
	c, err := compiler.NewCompiler("mysql", nil)
	require.NoError(t, err)

	st, err := builder.From("items").
		Equals("a", 1).
		NotEquals("b", nil).
		GreaterOrEqual("c", 2).
		LessOrEqual("d", 3).
		Like("e", "x%").
		NotIn("f", 4, 5).
		IsNotNull("g").
		OrWhere("h", "<", 6).
		ToSelect(c)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM `items` WHERE (`a` = ? AND `b` IS NOT NULL AND `c` >= ? AND `d` <= ? AND `e` LIKE ? AND `f` NOT IN (?,?) AND `g` IS NOT NULL OR `h` < ?)",
		st.SQL)
	assert.Equal(t, []any{1, 2, 3, "x%", 4, 5, 6}, st.Args)
}

func TestBuilderWrites(t *testing.T) {
	c, err := compiler.NewCompiler("sqlite", nil)
	require.NoError(t, err)

	b := builder.From("items").Equals("id", 9).Limit(5).Offset(2).WithDeleted()
	assert.True(t, b.Query().IncludesDeleted())

	st, err := b.ToUpdate(c, ast.NewRecord().Set("name", "n"))
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "items" SET "name"=? WHERE ("id" = ?)`, st.SQL)

	st, err = b.ToDelete(c)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "items" WHERE ("id" = ?)`, st.SQL)
}

func TestBuilderRecordsBuildErrors(t *testing.T) {
	c, err := compiler.NewCompiler("mysql", nil)
	require.NoError(t, err)

	b := builder.From("items").In("id").And(func(g *ast.Group) { g.WhereEq("x", 1) })
	assert.ErrorIs(t, b.Err(), errs.ErrEmptyInList)

	_, err = b.ToSelect(c)
	assert.True(t, errs.IsBuild(err))
}

func TestBuilderMatch(t *testing.T) {
	c, err := compiler.NewCompiler("mysql", nil)
	require.NoError(t, err)

	id := columns.New[int]("", "id")
	name := columns.NewString("", "name")
	st, err := builder.From("users").Match(id.Gt(1), name.StartsWith("A")).OrMatch(id.Eq(0)).ToSelect(c)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` WHERE (`id` > ? AND `name` LIKE ? OR `id` = ?)", st.SQL)
	assert.Equal(t, []any{1, "A%", 0}, st.Args)
}
