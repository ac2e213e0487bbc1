package columns_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/columns"
	"github.com/satishbabariya/sqlorm/query/compiler"
)

var (
	userID      = columns.New[int]("users", "id")
	userEmail   = columns.NewString("users", "email")
	userCreated = columns.New[time.Time]("users", "created_at")
	postAuthor  = columns.New[int]("posts", "author_id")
)

func TestColumnConditions(t *testing.T) {
	c, err := compiler.NewCompiler("postgres", nil)
	require.NoError(t, err)
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	q := ast.NewQuery("users").Filter(func(g *ast.Group) {
		g.WhereCondition(userID.In(1, 2)).
			WhereCondition(userEmail.EndsWith("@ex_ample.com")).
			WhereCondition(userCreated.Gte(since)).
			OrWhereCondition(userEmail.IsNull()).
			WhereExists("posts", func(q *ast.Query) {
				q.Root().WhereCondition(postAuthor.EqColumn(userID))
			})
	})
	st, err := c.Select(q)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "users" WHERE ("users"."id" IN ($1,$2) AND "users"."email" LIKE $3 AND "users"."created_at" >= $4 OR "users"."email" IS NULL AND EXISTS (SELECT * FROM "posts" WHERE ("posts"."author_id" = "users"."id") LIMIT $5))`,
		st.SQL)
	assert.Equal(t, []any{1, 2, `%@ex\_ample.com`, since, 1}, st.Args)
}

func TestColumnHelpers(t *testing.T) {
	assert.Equal(t, ast.Column{Table: "users", Name: "id"}, userID.Ref())
	assert.Equal(t, ast.OpNotIn, userID.NotIn(3).Operator)
	assert.Equal(t, ast.Lit("a%"), userEmail.StartsWith("a").Right)
	assert.Equal(t, ast.Lit("%100\\%%"), userEmail.Contains("100%").Right)

	g := ast.NewGroup().WhereCondition(userID.In())
	assert.Error(t, g.Err())
}
