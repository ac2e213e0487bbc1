// Package document reads declarative query documents written in YAML or
// JSON and turns them into query descriptors.
package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/query/errs"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
)

// Operation names the statement a document compiles to.
type Operation string

const (
	OpSelect Operation = "select"
	OpCount  Operation = "count"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Document describes one statement.
type Document struct {
	Operation   Operation `yaml:"operation"`
	Model       string    `yaml:"model"`
	WithDeleted bool      `yaml:"withDeleted"`
	Where       []Item    `yaml:"where"`
	OrderBy     []Order   `yaml:"orderBy"`
	Limit       *int      `yaml:"limit"`
	Offset      *int      `yaml:"offset"`
	Values      Values    `yaml:"values"`
}

// Item is one entry of a where list. Exactly one of a condition (Column),
// Group, Exists or NotExists is set.
type Item struct {
	Column string    `yaml:"column"`
	Op     string    `yaml:"op"`
	Value  yaml.Node `yaml:"value"`
	Values []any     `yaml:"values"`
	Ref    string    `yaml:"ref"`
	Not    bool      `yaml:"not"`
	Or     bool      `yaml:"or"`

	Group     []Item    `yaml:"group"`
	Exists    *Subquery `yaml:"exists"`
	NotExists *Subquery `yaml:"notExists"`
}

// Subquery is the nested query of an exists item.
type Subquery struct {
	Model string `yaml:"model"`
	Where []Item `yaml:"where"`
}

// Order is one ORDER BY term.
type Order struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction"`
}

// Values is a column to value mapping that keeps document order.
type Values struct {
	rec *ast.Record
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: values must be a mapping", node.Line)
	}
	rec := ast.NewRecord()
	for i := 0; i+1 < len(node.Content); i += 2 {
		var val any
		if err := node.Content[i+1].Decode(&val); err != nil {
			return err
		}
		rec.Set(node.Content[i].Value, val)
	}
	v.rec = rec
	return nil
}

// Record returns a copy of the values. It is empty when none were given.
func (v Values) Record() *ast.Record { return v.rec.Clone() }

// Parse decodes a document. JSON is accepted since it is valid YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Build("parse", "", fmt.Errorf("%w: %w", errs.ErrInvalidQuery, err))
	}
	doc.Operation = Operation(strings.ToLower(strings.TrimSpace(string(doc.Operation))))
	if doc.Operation == "" {
		doc.Operation = OpSelect
	}
	return &doc, nil
}

// Build returns the query and, for insert and update, the record the
// document describes.
func (d *Document) Build() (*ast.Query, *ast.Record, error) {
	const op = "build"
	switch d.Operation {
	case OpSelect, OpCount, OpInsert, OpUpdate, OpDelete:
	default:
		return nil, nil, errs.Build(op, d.Model, fmt.Errorf("%w: unknown operation %q", errs.ErrInvalidQuery, d.Operation))
	}
	if d.Model == "" {
		return nil, nil, errs.Build(op, "", fmt.Errorf("%w: model is required", errs.ErrInvalidQuery))
	}

	q := ast.NewQuery(d.Model)
	if err := fill(q.Root(), d.Where); err != nil {
		return nil, nil, errs.Build(op, d.Model, err)
	}
	for _, o := range d.OrderBy {
		dir, err := direction(o.Direction)
		if err != nil {
			return nil, nil, errs.Build(op, d.Model, err)
		}
		q.OrderBy(o.Column, dir)
	}
	if d.Limit != nil {
		q.Limit(*d.Limit)
	}
	if d.Offset != nil {
		q.Offset(*d.Offset)
	}
	if d.WithDeleted {
		q.WithDeleted()
	}
	if err := q.Err(); err != nil {
		return nil, nil, err
	}

	var rec *ast.Record
	if d.Operation == OpInsert || d.Operation == OpUpdate {
		rec = d.Values.Record()
		if rec.Len() == 0 {
			return nil, nil, errs.Build(op, d.Model, errs.ErrEmptyValues)
		}
	}
	return q, rec, nil
}

// Compile builds the document and compiles it with c.
func (d *Document) Compile(c *compiler.Compiler) (*sqlgen.Statement, error) {
	q, rec, err := d.Build()
	if err != nil {
		return nil, err
	}
	switch d.Operation {
	case OpCount:
		return c.Count(q)
	case OpInsert:
		return c.Insert(q.Model(), rec)
	case OpUpdate:
		return c.Update(q, rec)
	case OpDelete:
		return c.Delete(q)
	default:
		return c.Select(q)
	}
}

func direction(s string) (ast.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return ast.Asc, nil
	case "desc":
		return ast.Desc, nil
	}
	return ast.Asc, fmt.Errorf("%w: unknown direction %q", errs.ErrInvalidQuery, s)
}

func fill(g *ast.Group, items []Item) error {
	for i, it := range items {
		if err := it.apply(g); err != nil {
			return fmt.Errorf("where[%d]: %w", i, err)
		}
	}
	return nil
}

func (it Item) kinds() int {
	n := 0
	if it.Column != "" {
		n++
	}
	if it.Group != nil {
		n++
	}
	if it.Exists != nil {
		n++
	}
	if it.NotExists != nil {
		n++
	}
	return n
}

func (it Item) apply(g *ast.Group) error {
	if it.kinds() != 1 {
		return fmt.Errorf("%w: item needs exactly one of column, group, exists or notExists", errs.ErrInvalidQuery)
	}

	switch {
	case it.Group != nil:
		child := ast.NewGroup()
		if err := fill(child, it.Group); err != nil {
			return err
		}
		if it.Or {
			g.OrWhereGroup(child)
		} else {
			g.WhereGroup(child)
		}
		return child.Err()

	case it.Exists != nil, it.NotExists != nil:
		sub, not := it.Exists, false
		if sub == nil {
			sub, not = it.NotExists, true
		}
		if sub.Model == "" {
			return fmt.Errorf("%w: exists needs a model", errs.ErrInvalidQuery)
		}
		var ferr error
		fn := func(q *ast.Query) { ferr = fill(q.Root(), sub.Where) }
		switch {
		case it.Or && not:
			g.OrWhereNotExists(sub.Model, fn)
		case it.Or:
			g.OrWhereExists(sub.Model, fn)
		case not:
			g.WhereNotExists(sub.Model, fn)
		default:
			g.WhereExists(sub.Model, fn)
		}
		return ferr
	}

	c, err := it.condition()
	if err != nil {
		return err
	}
	if it.Or {
		g.OrWhereCondition(c)
	} else {
		g.WhereCondition(c)
	}
	return g.Err()
}

func (it Item) condition() (ast.Condition, error) {
	op := ast.Operator(strings.TrimSpace(it.Op))
	if op == "" {
		op = ast.OpEq
	}
	c := ast.Condition{Left: ast.Col(it.Column), Operator: op, Not: it.Not}

	switch {
	case op.Unary():
	case it.Ref != "":
		c.Right = ast.Col(it.Ref)
	case it.Values != nil:
		c.Right = ast.ListOf(it.Values...)
	case it.Value.Kind != 0:
		var v any
		if err := it.Value.Decode(&v); err != nil {
			return c, err
		}
		c.Right = ast.Lit(v)
	default:
		return c, fmt.Errorf("%w: condition on %q has no value, values or ref", errs.ErrInvalidQuery, it.Column)
	}
	return c, nil
}
