// Package columns provides typed column handles that build conditions.
//
//	var (
//		userID    = columns.New[int]("User", "id")
//		userEmail = columns.NewString("User", "email")
//	)
//
//	builder.From("User").Match(userID.Gt(10), userEmail.EndsWith("@example.com"))
package columns

import (
	"strings"

	"github.com/satishbabariya/sqlorm/query/ast"
)

// Column is a typed column reference, qualified by a model name unless
// that name is empty.
type Column[T any] struct {
	ref ast.Column
}

// New returns a column of model.
func New[T any](model, name string) Column[T] {
	return Column[T]{ref: ast.Column{Table: model, Name: name}}
}

// Ref returns the column operand.
func (c Column[T]) Ref() ast.Column { return c.ref }

func (c Column[T]) cond(op ast.Operator, right ast.Operand) ast.Condition {
	return ast.Condition{Left: c.ref, Operator: op, Right: right}
}

// Eq is column = value.
func (c Column[T]) Eq(v T) ast.Condition { return c.cond(ast.OpEq, ast.Lit(v)) }

// NotEq is column != value.
func (c Column[T]) NotEq(v T) ast.Condition { return c.cond(ast.OpNotEq, ast.Lit(v)) }

// Gt is column > value.
func (c Column[T]) Gt(v T) ast.Condition { return c.cond(ast.OpGt, ast.Lit(v)) }

// Gte is column >= value.
func (c Column[T]) Gte(v T) ast.Condition { return c.cond(ast.OpGte, ast.Lit(v)) }

// Lt is column < value.
func (c Column[T]) Lt(v T) ast.Condition { return c.cond(ast.OpLt, ast.Lit(v)) }

// Lte is column <= value.
func (c Column[T]) Lte(v T) ast.Condition { return c.cond(ast.OpLte, ast.Lit(v)) }

// In is column IN (values). An empty list is rejected when the condition
// is added to a group.
func (c Column[T]) In(values ...T) ast.Condition { return c.cond(ast.OpIn, list(values)) }

// NotIn is column NOT IN (values).
func (c Column[T]) NotIn(values ...T) ast.Condition { return c.cond(ast.OpNotIn, list(values)) }

// EqColumn compares with another column of the same type.
func (c Column[T]) EqColumn(other Column[T]) ast.Condition { return c.cond(ast.OpEq, other.ref) }

// IsNull is column IS NULL.
func (c Column[T]) IsNull() ast.Condition { return c.cond(ast.OpIsNull, nil) }

// IsNotNull is column IS NOT NULL.
func (c Column[T]) IsNotNull() ast.Condition { return c.cond(ast.OpIsNotNull, nil) }

func list[T any](values []T) ast.List {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return ast.List{Values: out}
}

// String is a text column with pattern helpers.
type String struct {
	Column[string]
}

// NewString returns a text column of model.
func NewString(model, name string) String {
	return String{New[string](model, name)}
}

// Like is column LIKE pattern, with the pattern passed through unchanged.
func (c String) Like(pattern string) ast.Condition {
	return c.cond(ast.OpLike, ast.Lit(pattern))
}

// Contains matches values containing s.
func (c String) Contains(s string) ast.Condition { return c.Like("%" + escape(s) + "%") }

// StartsWith matches values beginning with s.
func (c String) StartsWith(s string) ast.Condition { return c.Like(escape(s) + "%") }

// EndsWith matches values ending with s.
func (c String) EndsWith(s string) ast.Condition { return c.Like("%" + escape(s)) }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escape protects LIKE wildcards in s. Backslash is the default escape
// character for MySQL and PostgreSQL; SQLite needs an ESCAPE clause, which
// is not emitted.
func escape(s string) string { return likeEscaper.Replace(s) }
