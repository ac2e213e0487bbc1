// Package ast defines the in-memory filter expression tree and query descriptor.
//
// The tree is a closed union: a Group holds an ordered sequence of Elements,
// and an Element is exactly one of Condition, Conjunction, *Group or *Exists.
// Renderers switch over the union exhaustively.
package ast

import (
	"reflect"
	"strings"
)

// Element is a member of a Group's element sequence.
//
// This is a sealed interface; only types in this package implement it.
type Element interface {
	element()
}

// Operand is the left or right side of a Condition.
//
// This is a sealed interface with three variants: Column, Literal and List.
// Whether an operand is a column or a value is fixed when it is constructed,
// so a string column name and a string literal are never confused.
type Operand interface {
	operand()
}

// Column references a column, optionally qualified by a table or model name.
// Columns are rendered as quoted identifiers and never parameterized.
type Column struct {
	Name  string
	Table string
}

func (Column) operand() {}

// Qualified reports whether the column carries a table qualifier.
func (c Column) Qualified() bool { return c.Table != "" }

// String returns the dotted form of the column.
func (c Column) String() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// Col parses "name" or "table.name" into a Column. Only the first dot
// splits, so "a.b.c" gives Table "a" and Name "b.c", which the compiler
// rejects.
func Col(ref string) Column {
	if i := strings.IndexByte(ref, '.'); i > 0 && i < len(ref)-1 {
		return Column{Table: ref[:i], Name: ref[i+1:]}
	}
	return Column{Name: ref}
}

// TableCol returns a table-qualified Column.
func TableCol(table, name string) Column {
	return Column{Table: table, Name: name}
}

// Literal is a value operand. It is always rendered as a placeholder.
type Literal struct {
	Value any
}

func (Literal) operand() {}

// Lit wraps a value as a Literal.
func Lit(v any) Literal { return Literal{Value: v} }

// List is the right operand of IN / NOT IN: one placeholder per value.
type List struct {
	Values []any
}

func (List) operand() {}

// ListOf returns a List holding a copy of values.
func ListOf(values ...any) List {
	out := make([]any, len(values))
	copy(out, values)
	return List{Values: out}
}

// ExpandList turns a slice or array value into a List. It reports false for
// scalars, nil and []byte, which is a single value.
func ExpandList(v any) (List, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return List{}, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return List{}, false
	}
	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return List{Values: values}, true
}

// Operator is a comparison operator. Unknown operators are rendered verbatim.
type Operator string

const (
	OpEq        Operator = "="
	OpNotEq     Operator = "!="
	OpLt        Operator = "<"
	OpGt        Operator = ">"
	OpLte       Operator = "<="
	OpGte       Operator = ">="
	OpLike      Operator = "LIKE"
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT IN"
	OpIsNull    Operator = "IS NULL"
	OpIsNotNull Operator = "IS NOT NULL"
)

// Unary reports whether the operator takes no right operand.
func (o Operator) Unary() bool {
	switch strings.ToUpper(strings.TrimSpace(string(o))) {
	case string(OpIsNull), string(OpIsNotNull):
		return true
	}
	return false
}

// SetMembership reports whether the operator expects a List right operand.
func (o Operator) SetMembership() bool {
	return strings.HasSuffix(strings.ToUpper(strings.TrimSpace(string(o))), "IN")
}

func (o Operator) is(other Operator) bool {
	return strings.EqualFold(strings.TrimSpace(string(o)), string(other))
}

// Condition is a single comparison. Right is nil for unary operators.
type Condition struct {
	Left     Operand
	Operator Operator
	Right    Operand
	Not      bool
}

func (Condition) element() {}

// Conjunction separates sibling predicates in a Group.
type Conjunction uint8

const (
	And Conjunction = iota + 1
	Or
)

func (Conjunction) element() {}

// String returns the SQL keyword.
func (c Conjunction) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// Exists tests whether a nested query yields at least one row.
type Exists struct {
	Query *Query
	Not   bool
}

func (*Exists) element() {}

func (*Group) element() {}

// normalize applies the null-aware rewrite: "=" / "!=" against a nil literal
// become IS NULL / IS NOT NULL.
func normalize(c Condition) Condition {
	lit, isLit := c.Right.(Literal)
	if c.Right != nil && !(isLit && isNil(lit.Value)) {
		return c
	}
	switch {
	case c.Operator.is(OpEq):
		c.Operator, c.Right = OpIsNull, nil
	case c.Operator.is(OpNotEq):
		c.Operator, c.Right = OpIsNotNull, nil
	}
	return c
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
