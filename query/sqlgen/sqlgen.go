// Package sqlgen lowers query descriptors into parameterized SQL for a
// specific dialect.
package sqlgen

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/errs"
	"github.com/satishbabariya/sqlorm/schema"
)

// Statement is compiled SQL and its parameters in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

// DefaultUnboundedLimit is the limit bound when only an offset is given.
const DefaultUnboundedLimit int64 = math.MaxInt64

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the source of the updated-at timestamp.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithUnboundedLimit sets the limit used when an offset is given without one.
func WithUnboundedLimit(n int64) Option {
	return func(g *Generator) {
		if n > 0 {
			g.unbounded = n
		}
	}
}

// Generator compiles statements for one dialect. It holds no mutable state
// and is safe for concurrent use.
type Generator struct {
	dialect   Dialect
	resolver  schema.Resolver
	now       func() time.Time
	unbounded int64
}

// New creates a Generator. A nil resolver maps names to themselves.
func New(d Dialect, r schema.Resolver, opts ...Option) *Generator {
	if r == nil {
		r = schema.Passthrough{}
	}
	g := &Generator{
		dialect:   d,
		resolver:  r,
		now:       time.Now,
		unbounded: DefaultUnboundedLimit,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dialect returns the target dialect.
func (g *Generator) Dialect() Dialect { return g.dialect }

// Select compiles SELECT * for q.
func (g *Generator) Select(q *ast.Query) (*Statement, error) {
	return g.query("select", q, false)
}

// Count compiles SELECT COUNT(*) for q.
func (g *Generator) Count(q *ast.Query) (*Statement, error) {
	return g.query("count", q, true)
}

// Insert compiles an INSERT of rec into model. Columns appear in record order.
func (g *Generator) Insert(model string, rec *ast.Record) (*Statement, error) {
	const op = "insert"
	if model == "" {
		return nil, errs.Build(op, "", errs.ErrInvalidQuery)
	}
	if rec.Len() == 0 {
		return nil, errs.Build(op, model, errs.ErrEmptyValues)
	}
	return g.run(op, model, func(w *writer) error {
		sc, err := g.scope(op, model)
		if err != nil {
			return err
		}
		cols, vals, err := g.values(op, sc, rec)
		if err != nil {
			return err
		}
		w.write("INSERT INTO ", g.dialect.Quote(sc.table), " (")
		for i, c := range cols {
			if i > 0 {
				w.write(",")
			}
			w.ident("", c)
		}
		w.write(") VALUES (")
		for i, v := range vals {
			if i > 0 {
				w.write(",")
			}
			w.param(v)
		}
		w.write(")")
		return nil
	})
}

// Update compiles an UPDATE of the rows matched by q. When the model has an
// updated-at column its value is set to the current time; an explicit value
// for that column is overwritten. rec itself is not modified.
func (g *Generator) Update(q *ast.Query, rec *ast.Record) (*Statement, error) {
	const op = "update"
	if err := check(op, q); err != nil {
		return nil, err
	}
	return g.run(op, q.Model(), func(w *writer) error {
		sc, err := g.scope(op, q.Model())
		if err != nil {
			return err
		}
		cols, vals, err := g.values(op, sc, rec)
		if err != nil {
			return err
		}

		updated, ok, err := g.resolver.UpdatedAtColumn(q.Model())
		if err != nil {
			return errs.Resolution(op, q.Model(), err)
		}
		if ok {
			i := indexOf(cols, updated)
			if i < 0 {
				cols = append(cols, updated)
				vals = append(vals, nil)
				i = len(cols) - 1
			}
			vals[i] = g.now()
		}
		if len(cols) == 0 {
			return errs.Build(op, q.Model(), errs.ErrEmptyValues)
		}

		w.write("UPDATE ", g.dialect.Quote(sc.table), " SET ")
		for i, c := range cols {
			if i > 0 {
				w.write(",")
			}
			w.ident("", c)
			w.write("=")
			w.param(vals[i])
		}

		root, err := g.visible(op, q, &sc)
		if err != nil {
			return err
		}
		return g.where(w, op, sc, root)
	})
}

// Delete compiles a DELETE of the rows matched by q. Soft-delete filtering
// never applies.
func (g *Generator) Delete(q *ast.Query) (*Statement, error) {
	const op = "delete"
	if err := check(op, q); err != nil {
		return nil, err
	}
	return g.run(op, q.Model(), func(w *writer) error {
		sc, err := g.scope(op, q.Model())
		if err != nil {
			return err
		}
		w.write("DELETE FROM ", g.dialect.Quote(sc.table))
		return g.where(w, op, sc, q.Root())
	})
}

func check(op string, q *ast.Query) error {
	if q == nil || q.Model() == "" {
		return errs.Build(op, "", errs.ErrInvalidQuery)
	}
	return q.Err()
}

func (g *Generator) query(op string, q *ast.Query, count bool) (*Statement, error) {
	if err := check(op, q); err != nil {
		return nil, err
	}
	return g.run(op, q.Model(), func(w *writer) error {
		return g.selectInto(w, op, q, count)
	})
}

// run executes fn on a fresh writer and verifies that the placeholders in
// the text line up with the parameters.
func (g *Generator) run(op, model string, fn func(w *writer) error) (*Statement, error) {
	w := &writer{dialect: g.dialect}
	if err := fn(w); err != nil {
		return nil, err
	}
	st := w.statement()
	if n := g.dialect.CountPlaceholders(st.SQL); n != len(st.Args) {
		debug.Error("compiled statement is misaligned",
			"op", op, "model", model, "placeholders", n, "args", len(st.Args), "sql", st.SQL)
		return nil, errs.Invariant(op, model,
			fmt.Errorf("%w: %d placeholders, %d args", errs.ErrPlaceholderMismatch, n, len(st.Args)))
	}
	return st, nil
}

// scope is the model a fragment is compiled against. Unqualified columns
// resolve against it.
type scope struct {
	model      string
	table      string
	softDelete string
}

func (g *Generator) scope(op, model string) (scope, error) {
	table, err := g.resolver.TableName(model)
	if err != nil {
		return scope{}, errs.Resolution(op, model, err)
	}
	return scope{model: model, table: table}, nil
}

func (g *Generator) selectInto(w *writer, op string, q *ast.Query, count bool) error {
	sc, err := g.scope(op, q.Model())
	if err != nil {
		return err
	}
	if count {
		w.write("SELECT COUNT(*) FROM ", g.dialect.Quote(sc.table))
	} else {
		w.write("SELECT * FROM ", g.dialect.Quote(sc.table))
	}

	root, err := g.visible(op, q, &sc)
	if err != nil {
		return err
	}
	if err := g.where(w, op, sc, root); err != nil {
		return err
	}

	if orders := q.Orders(); len(orders) > 0 {
		w.write(" ORDER BY ")
		for i, o := range orders {
			if i > 0 {
				w.write(",")
			}
			table, col, err := g.column(op, sc, o.Column)
			if err != nil {
				return err
			}
			w.ident(table, col)
			w.write(" ", o.Direction.String())
		}
	}

	limit, hasLimit := q.LimitValue()
	offset, hasOffset := q.OffsetValue()
	if hasLimit || hasOffset {
		var l, o string
		if hasOffset {
			o = w.bind(offset)
		}
		if hasLimit {
			l = w.bind(limit)
		} else {
			l = w.bind(g.unbounded)
		}
		w.write(" ", g.dialect.Paginate(l, o))
	}
	return nil
}

// visible returns the filter for q with the soft-delete check in front when
// the model has one and deleted rows are not requested. The query itself is
// left untouched.
func (g *Generator) visible(op string, q *ast.Query, sc *scope) (*ast.Group, error) {
	root := q.Root()
	if q.IncludesDeleted() {
		return root, nil
	}
	col, ok, err := g.resolver.SoftDeleteColumn(q.Model())
	if err != nil {
		return nil, errs.Resolution(op, q.Model(), err)
	}
	if !ok {
		return root, nil
	}
	sc.softDelete = col

	els := []ast.Element{ast.Condition{Left: ast.Column{Name: col}, Operator: ast.OpIsNull}}
	if !root.IsEmpty() {
		els = append(els, ast.And)
		if hasOr(root) {
			els = append(els, root)
		} else {
			els = append(els, root.Elements()...)
		}
	}
	return ast.NewGroup(els...), nil
}

func hasOr(grp *ast.Group) bool {
	for _, el := range grp.Elements() {
		if el == ast.Or {
			return true
		}
	}
	return false
}

func (g *Generator) where(w *writer, op string, sc scope, root *ast.Group) error {
	if root.IsEmpty() {
		return nil
	}
	w.write(" WHERE ")
	return g.group(w, op, sc, root)
}

// group renders a parenthesized group. Empty child groups are dropped with
// the conjunction in front of them; a missing conjunction is AND.
func (g *Generator) group(w *writer, op string, sc scope, grp *ast.Group) error {
	w.write("(")
	wrote := false
	var pending ast.Conjunction
	for _, el := range grp.Elements() {
		switch e := el.(type) {
		case ast.Conjunction:
			pending = e
			continue
		case *ast.Group:
			if e.IsEmpty() {
				pending = 0
				continue
			}
		}
		if wrote {
			if pending == 0 {
				pending = ast.And
			}
			w.write(" ", pending.String(), " ")
		}
		pending = 0
		if err := g.element(w, op, sc, el); err != nil {
			return err
		}
		wrote = true
	}
	w.write(")")
	return nil
}

func (g *Generator) element(w *writer, op string, sc scope, el ast.Element) error {
	switch e := el.(type) {
	case ast.Condition:
		return g.condition(w, op, sc, e)
	case *ast.Group:
		return g.group(w, op, sc, e)
	case *ast.Exists:
		if e.Query == nil || e.Query.Model() == "" {
			return errs.Build(op, sc.model, fmt.Errorf("%w: exists without a query", errs.ErrInvalidQuery))
		}
		if e.Not {
			w.write("NOT ")
		}
		w.write("EXISTS (")
		if err := g.selectInto(w, op, e.Query, false); err != nil {
			return err
		}
		w.write(")")
	case ast.Conjunction:
		w.write(e.String())
	}
	return nil
}

func (g *Generator) condition(w *writer, op string, sc scope, c ast.Condition) error {
	if c.Left == nil || strings.TrimSpace(string(c.Operator)) == "" {
		return errs.Build(op, sc.model, fmt.Errorf("%w: incomplete condition", errs.ErrInvalidQuery))
	}
	if c.Not {
		w.write("NOT ")
	}
	if err := g.operand(w, op, sc, c.Left); err != nil {
		return err
	}
	w.write(" ", string(c.Operator))
	if c.Operator.SetMembership() {
		l, ok := c.Right.(ast.List)
		if lit, isLit := c.Right.(ast.Literal); isLit {
			l, ok = ast.ExpandList(lit.Value)
		}
		if !ok {
			return errs.Build(op, sc.model, errs.ErrInvalidInOperand)
		}
		w.write(" ")
		return g.operand(w, op, sc, l)
	}
	if c.Right == nil || c.Operator.Unary() {
		return nil
	}
	w.write(" ")
	return g.operand(w, op, sc, c.Right)
}

func (g *Generator) operand(w *writer, op string, sc scope, o ast.Operand) error {
	switch o := o.(type) {
	case ast.Column:
		table, col, err := g.column(op, sc, o)
		if err != nil {
			return err
		}
		w.ident(table, col)
	case ast.Literal:
		w.param(o.Value)
	case ast.List:
		if len(o.Values) == 0 {
			return errs.Build(op, sc.model, errs.ErrEmptyInList)
		}
		w.write("(")
		for i, v := range o.Values {
			if i > 0 {
				w.write(",")
			}
			w.param(v)
		}
		w.write(")")
	}
	return nil
}

// column resolves a column reference to its physical table qualifier and
// name. The qualifier is empty for unqualified references.
func (g *Generator) column(op string, sc scope, c ast.Column) (string, string, error) {
	if strings.Contains(c.Name, ".") {
		return "", "", errs.Build(op, sc.model, fmt.Errorf("%w: column reference %q has more than one qualifier", errs.ErrInvalidQuery, c.String()))
	}
	if c.Table == "" {
		if sc.softDelete != "" && c.Name == sc.softDelete {
			return "", c.Name, nil
		}
		col, err := g.resolver.ColumnName(sc.model, c.Name)
		if err != nil {
			return "", "", errs.Resolution(op, sc.model, err)
		}
		return "", col, nil
	}
	table, err := g.resolver.TableName(c.Table)
	if err != nil {
		return "", "", errs.Resolution(op, c.Table, err)
	}
	col, err := g.resolver.ColumnName(c.Table, c.Name)
	if err != nil {
		return "", "", errs.Resolution(op, c.Table, err)
	}
	return table, col, nil
}

func (g *Generator) values(op string, sc scope, rec *ast.Record) ([]string, []any, error) {
	fields := rec.Columns()
	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	for _, f := range fields {
		col, err := g.resolver.ColumnName(sc.model, f)
		if err != nil {
			return nil, nil, errs.Resolution(op, sc.model, err)
		}
		v, _ := rec.Value(f)
		cols = append(cols, col)
		vals = append(vals, v)
	}
	return cols, vals, nil
}

func indexOf(cols []string, col string) int {
	for i, c := range cols {
		if c == col {
			return i
		}
	}
	return -1
}
