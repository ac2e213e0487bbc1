package sqlgen

import "strings"

// writer accumulates SQL text and its parameters. Every placeholder goes
// through bind, so numbering stays global across nested subqueries.
type writer struct {
	dialect Dialect
	sb      strings.Builder
	args    []any
}

func (w *writer) write(parts ...string) {
	for _, p := range parts {
		w.sb.WriteString(p)
	}
}

func (w *writer) bind(v any) string {
	w.args = append(w.args, v)
	return w.dialect.Placeholder(len(w.args))
}

func (w *writer) param(v any) {
	w.sb.WriteString(w.bind(v))
}

func (w *writer) ident(table, column string) {
	if table != "" {
		w.sb.WriteString(w.dialect.Quote(table))
		w.sb.WriteByte('.')
	}
	w.sb.WriteString(w.dialect.Quote(column))
}

func (w *writer) statement() *Statement {
	args := w.args
	if args == nil {
		args = []any{}
	}
	return &Statement{SQL: w.sb.String(), Args: args}
}
