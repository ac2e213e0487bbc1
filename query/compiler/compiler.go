// Package compiler selects a SQL dialect by provider name and compiles
// query descriptors with it.
package compiler

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
	"github.com/satishbabariya/sqlorm/schema"
)

// Compiler compiles query descriptors into SQL for one provider.
type Compiler struct {
	provider  string
	generator *sqlgen.Generator
}

// NewCompiler creates a compiler for provider ("mysql", "postgres",
// "postgresql", "sqlite" or "sqlite3").
func NewCompiler(provider string, resolver schema.Resolver, opts ...sqlgen.Option) (*Compiler, error) {
	d, err := DialectFor(provider)
	if err != nil {
		return nil, err
	}
	return &Compiler{
		provider:  provider,
		generator: sqlgen.New(d, resolver, opts...),
	}, nil
}

// DialectFor maps a provider name to its dialect.
func DialectFor(provider string) (sqlgen.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "mysql":
		return sqlgen.MySQL{}, nil
	case "postgres", "postgresql":
		return sqlgen.Postgres{}, nil
	case "sqlite", "sqlite3":
		return sqlgen.SQLite{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

// Provider returns the provider name the compiler was created with.
func (c *Compiler) Provider() string { return c.provider }

// Dialect returns the target dialect.
func (c *Compiler) Dialect() sqlgen.Dialect { return c.generator.Dialect() }

// Select compiles a row query.
func (c *Compiler) Select(q *ast.Query) (*sqlgen.Statement, error) {
	return logged("select", model(q))(c.generator.Select(q))
}

// Count compiles a COUNT(*) query.
func (c *Compiler) Count(q *ast.Query) (*sqlgen.Statement, error) {
	return logged("count", model(q))(c.generator.Count(q))
}

// Insert compiles an INSERT.
func (c *Compiler) Insert(modelName string, rec *ast.Record) (*sqlgen.Statement, error) {
	return logged("insert", modelName)(c.generator.Insert(modelName, rec))
}

// Update compiles an UPDATE.
func (c *Compiler) Update(q *ast.Query, rec *ast.Record) (*sqlgen.Statement, error) {
	return logged("update", model(q))(c.generator.Update(q, rec))
}

// Delete compiles a DELETE.
func (c *Compiler) Delete(q *ast.Query) (*sqlgen.Statement, error) {
	return logged("delete", model(q))(c.generator.Delete(q))
}

func model(q *ast.Query) string {
	if q == nil {
		return ""
	}
	return q.Model()
}

func logged(op, modelName string) func(*sqlgen.Statement, error) (*sqlgen.Statement, error) {
	return func(st *sqlgen.Statement, err error) (*sqlgen.Statement, error) {
		if err != nil {
			debug.Debug("compile failed", "op", op, "model", modelName, "error", err)
			return nil, err
		}
		debug.Debug("compiled statement", "op", op, "model", modelName, "sql", st.SQL, "args", len(st.Args))
		return st, nil
	}
}
