package ast

// Direction is a sort direction.
type Direction uint8

const (
	Asc Direction = iota
	Desc
)

// String returns the SQL keyword.
func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Order is one ORDER BY term.
type Order struct {
	Column    Column
	Direction Direction
}

// Query describes a statement against one model: the filter tree, ordering,
// pagination and whether soft-deleted rows are visible.
//
// A Query owns its root Group exclusively. Like Group it is single-writer
// builder state. Compiling it never mutates it, so the same Query may be
// compiled any number of times.
type Query struct {
	model       string
	root        *Group
	orders      []Order
	limit       *int
	offset      *int
	withDeleted bool
}

// NewQuery starts a query on the given logical model.
func NewQuery(model string) *Query {
	return &Query{model: model, root: &Group{}}
}

// Model returns the logical model name.
func (q *Query) Model() string { return q.model }

// Root returns the root filter group. Predicates added to it become the
// WHERE clause.
func (q *Query) Root() *Group { return q.root }

// Filter runs fn on the root group.
func (q *Query) Filter(fn func(*Group)) *Query {
	fn(q.root)
	return q
}

// OrderBy appends an ORDER BY term.
func (q *Query) OrderBy(column string, dir Direction) *Query {
	q.orders = append(q.orders, Order{Column: Col(column), Direction: dir})
	return q
}

// OrderByAsc appends an ascending ORDER BY term.
func (q *Query) OrderByAsc(column string) *Query { return q.OrderBy(column, Asc) }

// OrderByDesc appends a descending ORDER BY term.
func (q *Query) OrderByDesc(column string) *Query { return q.OrderBy(column, Desc) }

// Limit caps the number of rows.
func (q *Query) Limit(n int) *Query {
	q.limit = &n
	return q
}

// Offset skips the first n rows.
func (q *Query) Offset(n int) *Query {
	q.offset = &n
	return q
}

// WithDeleted includes soft-deleted rows.
func (q *Query) WithDeleted() *Query {
	q.withDeleted = true
	return q
}

// Orders returns a copy of the ORDER BY terms.
func (q *Query) Orders() []Order {
	out := make([]Order, len(q.orders))
	copy(out, q.orders)
	return out
}

// LimitValue returns the limit and whether one was set.
func (q *Query) LimitValue() (int, bool) {
	if q.limit == nil {
		return 0, false
	}
	return *q.limit, true
}

// OffsetValue returns the offset and whether one was set.
func (q *Query) OffsetValue() (int, bool) {
	if q.offset == nil {
		return 0, false
	}
	return *q.offset, true
}

// IncludesDeleted reports whether soft-deleted rows are visible.
func (q *Query) IncludesDeleted() bool { return q.withDeleted }

// Err returns the first build error recorded anywhere in the filter tree.
func (q *Query) Err() error {
	if q == nil {
		return nil
	}
	return q.root.Err()
}

// Clone returns a deep copy. Literal values are shared, not copied.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	out := &Query{
		model:       q.model,
		root:        q.root.clone(),
		orders:      q.Orders(),
		withDeleted: q.withDeleted,
	}
	if q.limit != nil {
		n := *q.limit
		out.limit = &n
	}
	if q.offset != nil {
		n := *q.offset
		out.offset = &n
	}
	return out
}
