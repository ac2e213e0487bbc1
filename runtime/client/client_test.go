package client_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/query/errs"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
	"github.com/satishbabariya/sqlorm/runtime/client"
	"github.com/satishbabariya/sqlorm/schema"
)

const notesSchema = `
model Note {
  id        Int       @id
  title     String
  updatedAt DateTime? @updatedAt
  deletedAt DateTime? @softDelete
  @@map("notes")
}
`

var clock = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	reg, err := schema.ParseString("notes.schema", notesSchema)
	require.NoError(t, err)

	c, err := client.NewClient("sqlite", ":memory:", reg,
		client.WithCompileOptions(sqlgen.WithClock(func() time.Time { return clock })))
	require.NoError(t, err)
	c.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Ping(context.Background()))
	_, err = c.DB().Exec(`CREATE TABLE notes (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		updated_at DATETIME,
		deleted_at DATETIME
	)`)
	require.NoError(t, err)
	return c
}

func seed(t *testing.T, c *client.Client, titles ...string) {
	t.Helper()
	for i, title := range titles {
		_, err := c.Insert(context.Background(), "Note", ast.NewRecord().Set("id", i+1).Set("title", title))
		require.NoError(t, err)
	}
}

func TestClientCRUD(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	seed(t, c, "a", "b", "c")

	// soft delete "b" by hand
	n, err := c.Update(ctx, ast.NewQuery("Note").Filter(func(g *ast.Group) { g.WhereEq("id", 2) }),
		ast.NewRecord().Set("deletedAt", clock))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	visible, err := c.Count(ctx, ast.NewQuery("Note"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), visible)

	all, err := c.Count(ctx, ast.NewQuery("Note").WithDeleted())
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)

	rows, err := c.Find(ctx, ast.NewQuery("Note").OrderByDesc("id"))
	require.NoError(t, err)
	var titles []string
	for rows.Next() {
		var (
			id        int
			title     string
			updatedAt sql.NullTime
			deletedAt sql.NullTime
		)
		require.NoError(t, rows.Scan(&id, &title, &updatedAt, &deletedAt))
		titles = append(titles, title)
		assert.False(t, deletedAt.Valid)
		assert.False(t, updatedAt.Valid)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"c", "a"}, titles)

	n, err = c.Delete(ctx, ast.NewQuery("Note").Filter(func(g *ast.Group) { g.WhereNotNull("deletedAt") }))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClientBuildErrorsSkipExecution(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	var calls int
	c.Use(func(ctx context.Context, event *client.QueryEvent, next func() error) error {
		calls++
		return next()
	})

	_, err := c.Find(ctx, ast.NewQuery("Note").Filter(func(g *ast.Group) { g.WhereIn("id") }))
	assert.True(t, errs.IsBuild(err))

	_, err = c.Count(ctx, ast.NewQuery("Ghost"))
	assert.True(t, errs.IsResolution(err))
	assert.Zero(t, calls)
}

func TestClientMiddleware(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	var order []string
	var events []*client.QueryEvent
	c.Use(func(ctx context.Context, event *client.QueryEvent, next func() error) error {
		order = append(order, "outer")
		return next()
	})
	c.Use(client.TimingMiddleware(func(event *client.QueryEvent) {
		order = append(order, "timing")
		events = append(events, event)
	}))
	var failed error
	c.Use(client.ErrorMiddleware(func(event *client.QueryEvent, err error) { failed = err }))
	c.Use(client.LoggingMiddleware())

	seed(t, c, "x")
	require.Len(t, events, 1)
	assert.Equal(t, "insert", events[0].Op)
	assert.Equal(t, "Note", events[0].Model)
	assert.Equal(t, `INSERT INTO "notes" ("id","title") VALUES (?,?)`, events[0].SQL)
	assert.Equal(t, []any{1, "x"}, events[0].Args)
	assert.NoError(t, events[0].Err)
	assert.Equal(t, []string{"outer", "timing"}, order)

	// duplicate primary key
	_, err := c.Insert(ctx, "Note", ast.NewRecord().Set("id", 1).Set("title", "y"))
	require.Error(t, err)
	assert.True(t, errs.IsExecution(err))
	assert.Equal(t, err, failed)
	assert.Equal(t, err, events[1].Err)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	debug.InitWriter(&buf, slog.LevelDebug)
	t.Cleanup(func() { debug.Init(false) })

	c := newClient(t)
	c.Use(client.LoggingMiddleware())
	seed(t, c, "x")
	_, err := c.Insert(context.Background(), "Note", ast.NewRecord().Set("id", 1).Set("title", "y"))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="opened database" provider=sqlite driver=sqlite3`)
	assert.Contains(t, out, `msg="query executed" op=insert model=Note`)
	assert.Contains(t, out, `msg="query failed" op=insert model=Note`)
}

func TestClientTransaction(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	err := c.Transaction(ctx, func(tx *client.Tx) error {
		_, err := tx.Insert(ctx, "Note", ast.NewRecord().Set("id", 1).Set("title", "kept"))
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = c.Transaction(ctx, func(tx *client.Tx) error {
		if _, err := tx.Insert(ctx, "Note", ast.NewRecord().Set("id", 2).Set("title", "dropped")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = c.Transaction(ctx, func(tx *client.Tx) error {
			_, _ = tx.Insert(ctx, "Note", ast.NewRecord().Set("id", 3).Set("title", "panicked"))
			panic("oops")
		})
	})

	err = c.TransactionWithOptions(ctx, client.LevelDefault, false, func(tx *client.Tx) error {
		_, err := tx.Insert(ctx, "Note", ast.NewRecord().Set("id", 4).Set("title", "outer"))
		if err != nil {
			return err
		}
		nestedErr := tx.NestedTransaction(ctx, func(tx *client.Tx) error {
			if _, err := tx.Insert(ctx, "Note", ast.NewRecord().Set("id", 5).Set("title", "inner")); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, nestedErr, boom)

		n, err := tx.Count(ctx, ast.NewQuery("Note"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return nil
	})
	require.NoError(t, err)

	n, err := c.Count(ctx, ast.NewQuery("Note"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := client.NewClient("oracle", "", nil)
	assert.ErrorIs(t, err, compiler.ErrUnsupportedProvider)
}

func TestIsolationLevel(t *testing.T) {
	assert.Equal(t, sql.LevelSerializable, client.Serializable.ToSQLIsolationLevel())
	assert.Equal(t, sql.LevelDefault, client.LevelDefault.ToSQLIsolationLevel())
}
