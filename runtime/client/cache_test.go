package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/cache"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
	"github.com/satishbabariya/sqlorm/runtime/client"
	"github.com/satishbabariya/sqlorm/schema"
)

func TestClientCachesCounts(t *testing.T) {
	ctx := context.Background()
	reg, err := schema.ParseString("notes.schema", notesSchema)
	require.NoError(t, err)

	lru := cache.NewLRUCache(16, time.Minute)
	c, err := client.NewClient("sqlite", ":memory:", reg,
		client.WithCompileOptions(sqlgen.WithClock(func() time.Time { return clock })),
		client.WithCache(lru, 0))
	require.NoError(t, err)
	c.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { c.Close() })
	_, err = c.DB().Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT, updated_at DATETIME, deleted_at DATETIME)`)
	require.NoError(t, err)

	var executed int
	c.Use(func(ctx context.Context, e *client.QueryEvent, next func() error) error {
		if e.Op == "count" {
			executed++
		}
		return next()
	})

	seed(t, c, "a", "b")
	count := func() int64 {
		n, err := c.Count(ctx, ast.NewQuery("Note"))
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, int64(2), count())
	assert.Equal(t, int64(2), count())
	assert.Equal(t, 1, executed)
	assert.Equal(t, int64(1), lru.Stats().Hits)

	// a write through the client drops the cached count
	_, err = c.Delete(ctx, ast.NewQuery("Note").Filter(func(g *ast.Group) { g.WhereEq("id", 1) }))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count())
	assert.Equal(t, 2, executed)

	// transactions never read from the cache but still invalidate it
	require.NoError(t, c.Transaction(ctx, func(tx *client.Tx) error {
		n, err := tx.Count(ctx, ast.NewQuery("Note"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = tx.Insert(ctx, "Note", ast.NewRecord().Set("id", 9).Set("title", "z"))
		return err
	}))
	assert.Equal(t, 3, executed)
	assert.Equal(t, int64(2), count())
	assert.Equal(t, 4, executed)
}
