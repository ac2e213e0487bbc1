package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/query/ast"
)

func TestQueryDefaults(t *testing.T) {
	q := ast.NewQuery("User")

	assert.Equal(t, "User", q.Model())
	assert.True(t, q.Root().IsEmpty())
	assert.Empty(t, q.Orders())
	assert.False(t, q.IncludesDeleted())
	_, ok := q.LimitValue()
	assert.False(t, ok)
	_, ok = q.OffsetValue()
	assert.False(t, ok)
	assert.NoError(t, q.Err())
}

func TestQueryClone(t *testing.T) {
	q := ast.NewQuery("User").
		Filter(func(g *ast.Group) {
			g.WhereIn("id", 1, 2).WhereExists("Post", func(p *ast.Query) { p.Root().WhereEq("title", "x") })
		}).
		OrderByDesc("name").
		Limit(10).
		Offset(5).
		WithDeleted()

	c := q.Clone()
	c.Root().WhereEq("extra", true)
	c.OrderByAsc("id").Limit(1)

	assert.Equal(t, 3, q.Root().Len())
	assert.Equal(t, 5, c.Root().Len())
	require.Len(t, q.Orders(), 1)
	assert.Equal(t, ast.Desc, q.Orders()[0].Direction)

	n, _ := q.LimitValue()
	assert.Equal(t, 10, n)
	off, _ := c.OffsetValue()
	assert.Equal(t, 5, off)
	assert.True(t, c.IncludesDeleted())

	orig := q.Root().Elements()[2].(*ast.Exists)
	cloned := c.Root().Elements()[2].(*ast.Exists)
	assert.NotSame(t, orig.Query, cloned.Query)
}

func TestRecordOrder(t *testing.T) {
	r := ast.NewRecord().Set("name", "Bob").Set("age", 3).Set("name", "Al")

	assert.Equal(t, []string{"name", "age"}, r.Columns())
	v, ok := r.Value("name")
	assert.True(t, ok)
	assert.Equal(t, "Al", v)

	c := r.Clone().Set("zip", 1)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 3, c.Len())
}

func TestRecordOfSortsKeys(t *testing.T) {
	r := ast.RecordOf(map[string]any{"b": 2, "a": 1, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, r.Columns())
}
