package ast

import (
	"fmt"

	"github.com/satishbabariya/sqlorm/query/errs"
)

// Group is an ordered sequence of predicates separated by conjunctions.
// Groups are always rendered inside parentheses, so nesting preserves
// precedence.
//
// Every add-a-predicate method inserts the AND or OR conjunction itself, so
// the sequence always alternates predicate, conjunction, predicate.
//
// A Group is plain builder state. It is meant to be filled in by a single
// goroutine and must not be mutated concurrently without external locking.
type Group struct {
	elements []Element
	err      error
}

// NewGroup returns a Group holding elements as given. The fluent methods are
// the normal way to fill a Group; NewGroup exists for callers assembling a
// tree by hand.
func NewGroup(elements ...Element) *Group {
	g := &Group{}
	g.elements = append(g.elements, elements...)
	return g
}

// Elements returns a copy of the element sequence.
func (g *Group) Elements() []Element {
	out := make([]Element, len(g.elements))
	copy(out, g.elements)
	return out
}

// Len returns the number of elements, conjunctions included.
func (g *Group) Len() int { return len(g.elements) }

// IsEmpty reports whether the group holds no predicate at any depth.
func (g *Group) IsEmpty() bool {
	if g == nil {
		return true
	}
	for _, el := range g.elements {
		switch e := el.(type) {
		case Condition, *Exists:
			return false
		case *Group:
			if !e.IsEmpty() {
				return false
			}
		case Conjunction:
		}
	}
	return true
}

// Err returns the first build error recorded on the group or anything nested
// inside it.
func (g *Group) Err() error {
	if g == nil {
		return nil
	}
	if g.err != nil {
		return g.err
	}
	for _, el := range g.elements {
		switch e := el.(type) {
		case *Group:
			if err := e.Err(); err != nil {
				return err
			}
		case *Exists:
			if e.Query != nil {
				if err := e.Query.Err(); err != nil {
					return err
				}
			}
		case Condition, Conjunction:
		}
	}
	return nil
}

func (g *Group) fail(err error) *Group {
	if g.err == nil {
		g.err = err
	}
	return g
}

func (g *Group) push(conj Conjunction, el Element) *Group {
	if len(g.elements) > 0 {
		g.elements = append(g.elements, conj)
	}
	g.elements = append(g.elements, el)
	return g
}

func (g *Group) cond(conj Conjunction, op string, c Condition) *Group {
	c = normalize(c)
	if c.Operator.SetMembership() {
		l, err := members(c.Right)
		if err != nil {
			return g.fail(errs.Build(op, "", err))
		}
		c.Right = l
	}
	return g.push(conj, c)
}

// members checks the right operand of IN / NOT IN. A slice literal is
// expanded into a List.
func members(right Operand) (List, error) {
	switch r := right.(type) {
	case List:
		if len(r.Values) == 0 {
			return List{}, errs.ErrEmptyInList
		}
		return r, nil
	case Literal:
		if l, ok := ExpandList(r.Value); ok {
			if len(l.Values) == 0 {
				return List{}, errs.ErrEmptyInList
			}
			return l, nil
		}
	}
	return List{}, errs.ErrInvalidInOperand
}

// Where adds `column op value`, ANDed with what precedes it.
func (g *Group) Where(column string, op Operator, value any) *Group {
	return g.cond(And, "where", Condition{Left: Col(column), Operator: op, Right: Lit(value)})
}

// OrWhere adds `column op value`, ORed with what precedes it.
func (g *Group) OrWhere(column string, op Operator, value any) *Group {
	return g.cond(Or, "orWhere", Condition{Left: Col(column), Operator: op, Right: Lit(value)})
}

// WhereEq is Where with "=".
func (g *Group) WhereEq(column string, value any) *Group {
	return g.Where(column, OpEq, value)
}

// OrWhereEq is OrWhere with "=".
func (g *Group) OrWhereEq(column string, value any) *Group {
	return g.OrWhere(column, OpEq, value)
}

// WhereNot adds `NOT column op value`.
func (g *Group) WhereNot(column string, op Operator, value any) *Group {
	return g.cond(And, "whereNot", Condition{Left: Col(column), Operator: op, Right: Lit(value), Not: true})
}

// OrWhereNot adds `NOT column op value`, ORed.
func (g *Group) OrWhereNot(column string, op Operator, value any) *Group {
	return g.cond(Or, "orWhereNot", Condition{Left: Col(column), Operator: op, Right: Lit(value), Not: true})
}

// WhereColumn compares two columns, e.g. WhereColumn("posts.user_id", "=", "users.id").
func (g *Group) WhereColumn(left string, op Operator, right string) *Group {
	return g.cond(And, "whereColumn", Condition{Left: Col(left), Operator: op, Right: Col(right)})
}

// OrWhereColumn compares two columns, ORed.
func (g *Group) OrWhereColumn(left string, op Operator, right string) *Group {
	return g.cond(Or, "orWhereColumn", Condition{Left: Col(left), Operator: op, Right: Col(right)})
}

// WhereCondition adds a prebuilt condition. It is the way to use a literal
// left operand.
func (g *Group) WhereCondition(c Condition) *Group {
	return g.cond(And, "where", c)
}

// OrWhereCondition adds a prebuilt condition, ORed.
func (g *Group) OrWhereCondition(c Condition) *Group {
	return g.cond(Or, "orWhere", c)
}

// WhereNull adds `column IS NULL`.
func (g *Group) WhereNull(column string) *Group {
	return g.cond(And, "whereNull", Condition{Left: Col(column), Operator: OpIsNull})
}

// WhereNotNull adds `column IS NOT NULL`.
func (g *Group) WhereNotNull(column string) *Group {
	return g.cond(And, "whereNotNull", Condition{Left: Col(column), Operator: OpIsNotNull})
}

// OrWhereNull adds `column IS NULL`, ORed.
func (g *Group) OrWhereNull(column string) *Group {
	return g.cond(Or, "orWhereNull", Condition{Left: Col(column), Operator: OpIsNull})
}

// OrWhereNotNull adds `column IS NOT NULL`, ORed.
func (g *Group) OrWhereNotNull(column string) *Group {
	return g.cond(Or, "orWhereNotNull", Condition{Left: Col(column), Operator: OpIsNotNull})
}

// WhereLike adds `column LIKE pattern`.
func (g *Group) WhereLike(column string, pattern string) *Group {
	return g.Where(column, OpLike, pattern)
}

// OrWhereLike adds `column LIKE pattern`, ORed.
func (g *Group) OrWhereLike(column string, pattern string) *Group {
	return g.OrWhere(column, OpLike, pattern)
}

// LessThan adds `column < value`.
func (g *Group) LessThan(column string, value any) *Group {
	return g.Where(column, OpLt, value)
}

// GreaterThan adds `column > value`.
func (g *Group) GreaterThan(column string, value any) *Group {
	return g.Where(column, OpGt, value)
}

// OrLessThan adds `column < value`, ORed.
func (g *Group) OrLessThan(column string, value any) *Group {
	return g.OrWhere(column, OpLt, value)
}

// OrGreaterThan adds `column > value`, ORed.
func (g *Group) OrGreaterThan(column string, value any) *Group {
	return g.OrWhere(column, OpGt, value)
}

// WhereIn adds `column IN (values...)`. An empty value list records a build
// error and adds nothing.
func (g *Group) WhereIn(column string, values ...any) *Group {
	return g.in(And, "whereIn", column, OpIn, values)
}

// WhereNotIn adds `column NOT IN (values...)`.
func (g *Group) WhereNotIn(column string, values ...any) *Group {
	return g.in(And, "whereNotIn", column, OpNotIn, values)
}

// OrWhereIn adds `column IN (values...)`, ORed.
func (g *Group) OrWhereIn(column string, values ...any) *Group {
	return g.in(Or, "orWhereIn", column, OpIn, values)
}

// OrWhereNotIn adds `column NOT IN (values...)`, ORed.
func (g *Group) OrWhereNotIn(column string, values ...any) *Group {
	return g.in(Or, "orWhereNotIn", column, OpNotIn, values)
}

func (g *Group) in(conj Conjunction, op, column string, operator Operator, values []any) *Group {
	if len(values) == 0 {
		return g.fail(errs.Build(op, "", errs.ErrEmptyInList))
	}
	return g.push(conj, Condition{Left: Col(column), Operator: operator, Right: ListOf(values...)})
}

// And populates a child group with fn and ANDs it in. A child left empty by
// fn is dropped.
func (g *Group) And(fn func(*Group)) *Group {
	return g.sub(And, fn)
}

// Or populates a child group with fn and ORs it in.
func (g *Group) Or(fn func(*Group)) *Group {
	return g.sub(Or, fn)
}

func (g *Group) sub(conj Conjunction, fn func(*Group)) *Group {
	child := &Group{}
	fn(child)
	if err := child.Err(); err != nil {
		g.fail(err)
	}
	if child.IsEmpty() {
		return g
	}
	return g.push(conj, child)
}

// WhereGroup ANDs in a group built elsewhere, typically with NewGroup.
// The child is added as is; empty children are skipped at compile time.
func (g *Group) WhereGroup(child *Group) *Group {
	if child == nil {
		return g
	}
	return g.push(And, child)
}

// OrWhereGroup ORs in a group built elsewhere.
func (g *Group) OrWhereGroup(child *Group) *Group {
	if child == nil {
		return g
	}
	return g.push(Or, child)
}

// WhereMorph filters a polymorphic relation called name: `{name}Type =
// morphType`, plus `{name}Id = id` when an id is given. The pair is added as
// one child group.
func (g *Group) WhereMorph(name, morphType string, id ...any) *Group {
	return g.morph(And, "whereMorph", name, morphType, id)
}

// OrWhereMorph is WhereMorph, ORed.
func (g *Group) OrWhereMorph(name, morphType string, id ...any) *Group {
	return g.morph(Or, "orWhereMorph", name, morphType, id)
}

func (g *Group) morph(conj Conjunction, op, name, morphType string, id []any) *Group {
	if len(id) > 1 {
		return g.fail(errs.Build(op, "", fmt.Errorf("%w: %s takes at most one id", errs.ErrInvalidQuery, op)))
	}
	child := (&Group{}).WhereEq(name+"Type", morphType)
	if len(id) == 1 {
		child.WhereEq(name+"Id", id[0])
	}
	return g.push(conj, child)
}

// WhereExists adds `EXISTS (SELECT * FROM model ...)` where the nested query
// is configured by fn and limited to one row.
func (g *Group) WhereExists(model string, fn func(*Query)) *Group {
	return g.exists(And, model, false, fn)
}

// WhereNotExists adds `NOT EXISTS (...)`.
func (g *Group) WhereNotExists(model string, fn func(*Query)) *Group {
	return g.exists(And, model, true, fn)
}

// OrWhereExists adds `EXISTS (...)`, ORed.
func (g *Group) OrWhereExists(model string, fn func(*Query)) *Group {
	return g.exists(Or, model, false, fn)
}

// OrWhereNotExists adds `NOT EXISTS (...)`, ORed.
func (g *Group) OrWhereNotExists(model string, fn func(*Query)) *Group {
	return g.exists(Or, model, true, fn)
}

func (g *Group) exists(conj Conjunction, model string, not bool, fn func(*Query)) *Group {
	q := NewQuery(model)
	if fn != nil {
		fn(q)
	}
	q.Limit(1)
	return g.push(conj, &Exists{Query: q, Not: not})
}

func (g *Group) clone() *Group {
	out := &Group{err: g.err, elements: make([]Element, 0, len(g.elements))}
	for _, el := range g.elements {
		switch e := el.(type) {
		case *Group:
			out.elements = append(out.elements, e.clone())
		case *Exists:
			out.elements = append(out.elements, &Exists{Query: e.Query.Clone(), Not: e.Not})
		case Condition:
			if l, ok := e.Right.(List); ok {
				e.Right = ListOf(l.Values...)
			}
			out.elements = append(out.elements, e)
		case Conjunction:
			out.elements = append(out.elements, e)
		}
	}
	return out
}
