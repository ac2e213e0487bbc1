// Package client compiles query descriptors and runs them against a database.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/cache"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/query/executor"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
	"github.com/satishbabariya/sqlorm/runtime/types"
	"github.com/satishbabariya/sqlorm/schema"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	compile  []sqlgen.Option
	exec     []executor.Option
	cache    cache.Cache
	cacheTTL time.Duration
}

// WithCompileOptions passes options to the statement generator.
func WithCompileOptions(opts ...sqlgen.Option) Option {
	return func(o *options) { o.compile = append(o.compile, opts...) }
}

// WithNormalizer sets the parameter normalizer.
func WithNormalizer(n types.Normalizer) Option {
	return func(o *options) { o.exec = append(o.exec, executor.WithNormalizer(n)) }
}

// WithCache caches Count results in c. Entries are tagged with every model
// the query reads and dropped when any of those models is written through
// the client. A zero ttl uses the cache default.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

// Client is the database client. Register middleware with Use before the
// client is shared between goroutines.
type Client struct {
	session
	db       *sql.DB
	provider string
}

// NewClient opens a database for provider and dsn.
func NewClient(provider, dsn string, resolver schema.Resolver, opts ...Option) (*Client, error) {
	driverName := getDriverName(provider)
	if driverName == "" {
		return nil, fmt.Errorf("%w: %q", compiler.ErrUnsupportedProvider, provider)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c, err := NewClientFromDB(provider, db, resolver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	debug.Info("opened database", "provider", provider, "driver", driverName)
	return c, nil
}

// NewClientFromDB wraps an existing pool.
func NewClientFromDB(provider string, db *sql.DB, resolver schema.Resolver, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	comp, err := compiler.NewCompiler(provider, resolver, o.compile...)
	if err != nil {
		return nil, err
	}
	return &Client{
		session: session{
			compiler:   comp,
			exec:       executor.New(db, o.exec...),
			cache:      o.cache,
			cacheTTL:   o.cacheTTL,
			cacheReads: o.cache != nil,
		},
		db:       db,
		provider: provider,
	}, nil
}

// getDriverName maps provider names to database/sql driver names.
func getDriverName(provider string) string {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return ""
	}
}

// Use appends a middleware to the chain.
func (c *Client) Use(mw Middleware) {
	c.middlewares = append(c.middlewares, mw)
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the underlying pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database connection.
func (c *Client) DB() *sql.DB { return c.db }

// Provider returns the provider name.
func (c *Client) Provider() string { return c.provider }

// Compiler returns the statement compiler.
func (c *Client) Compiler() *compiler.Compiler { return c.compiler }

// session holds what Client and Tx share: compile, then execute through the
// middleware chain.
type session struct {
	compiler    *compiler.Compiler
	exec        *executor.Executor
	middlewares []Middleware

	cache      cache.Cache
	cacheTTL   time.Duration
	cacheReads bool
}

// Find runs q and returns the matching rows. The caller must close them.
func (s *session) Find(ctx context.Context, q *ast.Query) (*sql.Rows, error) {
	st, err := s.compiler.Select(q)
	if err != nil {
		return nil, err
	}
	var rows *sql.Rows
	err = s.run(ctx, "find", q.Model(), st, func() (err error) {
		rows, err = s.exec.Query(ctx, st)
		return err
	})
	return rows, err
}

// Count returns the number of rows matching q.
func (s *session) Count(ctx context.Context, q *ast.Query) (int64, error) {
	st, err := s.compiler.Count(q)
	if err != nil {
		return 0, err
	}
	var key string
	if s.cacheReads {
		key = cache.Key(st.SQL, st.Args)
		if v, ok := s.cache.Get(key); ok {
			return v.(int64), nil
		}
	}
	var n int64
	err = s.run(ctx, "count", q.Model(), st, func() (err error) {
		n, err = s.exec.QueryInt(ctx, st)
		return err
	})
	if err == nil && s.cacheReads {
		s.cache.Set(key, n, s.cacheTTL, readModels(q)...)
	}
	return n, err
}

// Insert writes rec into model and returns the number of inserted rows.
func (s *session) Insert(ctx context.Context, model string, rec *ast.Record) (int64, error) {
	st, err := s.compiler.Insert(model, rec)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, "insert", model, st)
}

// Update applies rec to the rows matching q.
func (s *session) Update(ctx context.Context, q *ast.Query, rec *ast.Record) (int64, error) {
	st, err := s.compiler.Update(q, rec)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, "update", q.Model(), st)
}

// Delete removes the rows matching q.
func (s *session) Delete(ctx context.Context, q *ast.Query) (int64, error) {
	st, err := s.compiler.Delete(q)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, "delete", q.Model(), st)
}

func (s *session) write(ctx context.Context, op, model string, st *sqlgen.Statement) (int64, error) {
	var n int64
	err := s.run(ctx, op, model, st, func() (err error) {
		n, err = s.exec.Exec(ctx, st)
		return err
	})
	if s.cache != nil {
		s.cache.Invalidate(model)
	}
	return n, err
}

// readModels lists q's model and every model its EXISTS subqueries read.
func readModels(q *ast.Query) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(q *ast.Query)
	var group func(g *ast.Group)
	walk = func(q *ast.Query) {
		if !seen[q.Model()] {
			seen[q.Model()] = true
			out = append(out, q.Model())
		}
		group(q.Root())
	}
	group = func(g *ast.Group) {
		for _, el := range g.Elements() {
			switch e := el.(type) {
			case *ast.Group:
				group(e)
			case *ast.Exists:
				if e.Query != nil {
					walk(e.Query)
				}
			}
		}
	}
	walk(q)
	return out
}
