package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/runtime/client"
)

type note struct {
	ID    int64
	Label string `db:"title"`
}

func TestFindAll(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	seed(t, c, "first", "second", "third")

	notes, err := client.FindAll[note](ctx, c, ast.NewQuery("Note").OrderByDesc("id").Limit(2))
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: 3, Label: "third"}, {ID: 2, Label: "second"}}, notes)

	err = c.Transaction(ctx, func(tx *client.Tx) error {
		got, err := client.FindAll[note](ctx, tx, ast.NewQuery("Note").Filter(func(g *ast.Group) {
			g.WhereEq("title", "first")
		}))
		require.NoError(t, err)
		assert.Len(t, got, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestScanAll(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	seed(t, c, "only")

	rows, err := c.Find(ctx, ast.NewQuery("Note"))
	require.NoError(t, err)
	defer rows.Close()

	rs, err := client.ScanAll(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "updated_at", "deleted_at"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, int64(1), rs.Rows[0][0])
	assert.Equal(t, "only", rs.Rows[0][1])
	assert.Nil(t, rs.Rows[0][3])
}
