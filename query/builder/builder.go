// Package builder provides a fluent query builder API.
package builder

import (
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
)

// Builder chains filter, ordering and pagination calls on a query for one
// model. Build errors are recorded and reported when the query is compiled.
type Builder struct {
	query *ast.Query
}

// From starts a query on model.
func From(model string) *Builder {
	return &Builder{query: ast.NewQuery(model)}
}

// Query returns the underlying descriptor.
func (b *Builder) Query() *ast.Query { return b.query }

// Err returns the first recorded build error.
func (b *Builder) Err() error { return b.query.Err() }

func (b *Builder) root() *ast.Group { return b.query.Root() }

// Where adds an ANDed condition.
func (b *Builder) Where(field string, op ast.Operator, value any) *Builder {
	b.root().Where(field, op, value)
	return b
}

// OrWhere adds an ORed condition.
func (b *Builder) OrWhere(field string, op ast.Operator, value any) *Builder {
	b.root().OrWhere(field, op, value)
	return b
}

// Equals adds an equality condition
func (b *Builder) Equals(field string, value any) *Builder {
	return b.Where(field, ast.OpEq, value)
}

// NotEquals adds a not-equals condition
func (b *Builder) NotEquals(field string, value any) *Builder {
	return b.Where(field, ast.OpNotEq, value)
}

// GreaterThan adds a greater-than condition
func (b *Builder) GreaterThan(field string, value any) *Builder {
	return b.Where(field, ast.OpGt, value)
}

// LessThan adds a less-than condition
func (b *Builder) LessThan(field string, value any) *Builder {
	return b.Where(field, ast.OpLt, value)
}

// GreaterOrEqual adds a greater-or-equal condition
func (b *Builder) GreaterOrEqual(field string, value any) *Builder {
	return b.Where(field, ast.OpGte, value)
}

// LessOrEqual adds a less-or-equal condition
func (b *Builder) LessOrEqual(field string, value any) *Builder {
	return b.Where(field, ast.OpLte, value)
}

// Like adds a LIKE condition
func (b *Builder) Like(field string, pattern string) *Builder {
	b.root().WhereLike(field, pattern)
	return b
}

// In adds an IN condition
func (b *Builder) In(field string, values ...any) *Builder {
	b.root().WhereIn(field, values...)
	return b
}

// NotIn adds a NOT IN condition
func (b *Builder) NotIn(field string, values ...any) *Builder {
	b.root().WhereNotIn(field, values...)
	return b
}

// IsNull adds an IS NULL condition
func (b *Builder) IsNull(field string) *Builder {
	b.root().WhereNull(field)
	return b
}

// IsNotNull adds an IS NOT NULL condition
func (b *Builder) IsNotNull(field string) *Builder {
	b.root().WhereNotNull(field)
	return b
}

// WhereColumn compares two columns.
func (b *Builder) WhereColumn(left string, op ast.Operator, right string) *Builder {
	b.root().WhereColumn(left, op, right)
	return b
}

// Match ANDs in prebuilt conditions, such as those made by the columns
// package.
func (b *Builder) Match(conds ...ast.Condition) *Builder {
	for _, c := range conds {
		b.root().WhereCondition(c)
	}
	return b
}

// OrMatch ORs in prebuilt conditions.
func (b *Builder) OrMatch(conds ...ast.Condition) *Builder {
	for _, c := range conds {
		b.root().OrWhereCondition(c)
	}
	return b
}

// And adds an ANDed sub-group.
func (b *Builder) And(fn func(*ast.Group)) *Builder {
	b.root().And(fn)
	return b
}

// Or adds an ORed sub-group.
func (b *Builder) Or(fn func(*ast.Group)) *Builder {
	b.root().Or(fn)
	return b
}

// WhereExists adds an EXISTS subquery on model.
func (b *Builder) WhereExists(model string, fn func(*ast.Query)) *Builder {
	b.root().WhereExists(model, fn)
	return b
}

// WhereNotExists adds a NOT EXISTS subquery on model.
func (b *Builder) WhereNotExists(model string, fn func(*ast.Query)) *Builder {
	b.root().WhereNotExists(model, fn)
	return b
}

// WhereMorph filters the polymorphic relation name by morph type and,
// optionally, id.
func (b *Builder) WhereMorph(name, morphType string, id ...any) *Builder {
	b.root().WhereMorph(name, morphType, id...)
	return b
}

// OrWhereMorph is WhereMorph, ORed.
func (b *Builder) OrWhereMorph(name, morphType string, id ...any) *Builder {
	b.root().OrWhereMorph(name, morphType, id...)
	return b
}

// OrderBy adds an ORDER BY term.
func (b *Builder) OrderBy(field string, dir ast.Direction) *Builder {
	b.query.OrderBy(field, dir)
	return b
}

// Limit caps the number of rows.
func (b *Builder) Limit(n int) *Builder {
	b.query.Limit(n)
	return b
}

// Offset skips rows.
func (b *Builder) Offset(n int) *Builder {
	b.query.Offset(n)
	return b
}

// WithDeleted includes soft-deleted rows.
func (b *Builder) WithDeleted() *Builder {
	b.query.WithDeleted()
	return b
}

// ToSelect compiles the query as SELECT *.
func (b *Builder) ToSelect(c *compiler.Compiler) (*sqlgen.Statement, error) {
	return c.Select(b.query)
}

// ToCount compiles the query as SELECT COUNT(*).
func (b *Builder) ToCount(c *compiler.Compiler) (*sqlgen.Statement, error) {
	return c.Count(b.query)
}

// ToUpdate compiles an UPDATE of the matched rows.
func (b *Builder) ToUpdate(c *compiler.Compiler, rec *ast.Record) (*sqlgen.Statement, error) {
	return c.Update(b.query, rec)
}

// ToDelete compiles a DELETE of the matched rows.
func (b *Builder) ToDelete(c *compiler.Compiler) (*sqlgen.Statement, error) {
	return c.Delete(b.query)
}
