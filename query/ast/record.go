package ast

import "sort"

// Record is an ordered set of column values for INSERT and UPDATE.
// Columns keep the order in which they were first set.
type Record struct {
	columns []string
	values  map[string]any
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// RecordOf builds a Record from a map. Keys are sorted so the result is
// deterministic.
func RecordOf(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := NewRecord()
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// Set assigns a value. Re-setting an existing column keeps its position.
func (r *Record) Set(column string, value any) *Record {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
	return r
}

// Columns returns the column names in order.
func (r *Record) Columns() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Value returns the value of column and whether it is set.
func (r *Record) Value(column string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[column]
	return v, ok
}

// Len returns the number of columns.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.columns)
}

// Clone returns a copy that can be modified independently.
func (r *Record) Clone() *Record {
	out := NewRecord()
	if r == nil {
		return out
	}
	for _, c := range r.columns {
		out.Set(c, r.values[c])
	}
	return out
}
