package sqlgen

import (
	"strconv"
	"strings"
)

// Dialect describes the syntax differences between SQL engines that the
// generator has to care about.
type Dialect interface {
	// Name returns the provider name.
	Name() string
	// Quote quotes a single identifier, doubling embedded quote characters.
	Quote(ident string) string
	// Placeholder renders the n-th parameter marker, counting from 1.
	Placeholder(n int) string
	// Paginate renders the pagination clause from already bound
	// placeholders. offset is empty when there is no offset. The offset
	// parameter is always bound before the limit parameter.
	Paginate(limit, offset string) string
	// CountPlaceholders counts parameter markers outside quoted identifiers.
	CountPlaceholders(sql string) int
}

// MySQL quotes with backticks and binds with "?".
type MySQL struct{}

// SQLite quotes with double quotes and binds with "?".
type SQLite struct{}

// Postgres quotes with double quotes and binds with "$n".
type Postgres struct{}

var (
	_ Dialect = MySQL{}
	_ Dialect = SQLite{}
	_ Dialect = Postgres{}
)

func (MySQL) Name() string                { return "mysql" }
func (MySQL) Quote(ident string) string   { return quoteWith('`', ident) }
func (MySQL) Placeholder(int) string      { return "?" }
func (MySQL) Paginate(l, o string) string { return limitComma(l, o) }
func (MySQL) CountPlaceholders(sql string) int {
	return countMarkers(sql, '`', questionMark)
}

func (SQLite) Name() string                { return "sqlite" }
func (SQLite) Quote(ident string) string   { return quoteWith('"', ident) }
func (SQLite) Placeholder(int) string      { return "?" }
func (SQLite) Paginate(l, o string) string { return limitComma(l, o) }
func (SQLite) CountPlaceholders(sql string) int {
	return countMarkers(sql, '"', questionMark)
}

func (Postgres) Name() string              { return "postgres" }
func (Postgres) Quote(ident string) string { return quoteWith('"', ident) }
func (Postgres) Placeholder(n int) string  { return "$" + strconv.Itoa(n) }
func (Postgres) Paginate(l, o string) string {
	if o == "" {
		return "LIMIT " + l
	}
	return "OFFSET " + o + " LIMIT " + l
}
func (Postgres) CountPlaceholders(sql string) int {
	return countMarkers(sql, '"', dollarNumber)
}

func limitComma(l, o string) string {
	if o == "" {
		return "LIMIT " + l
	}
	return "LIMIT " + o + "," + l
}

func quoteWith(q byte, ident string) string {
	s := string(q)
	return s + strings.ReplaceAll(ident, s, s+s) + s
}

// questionMark and dollarNumber report the length of a marker starting at
// sql[i], or 0.
func questionMark(sql string, i int) int {
	if sql[i] == '?' {
		return 1
	}
	return 0
}

func dollarNumber(sql string, i int) int {
	if sql[i] != '$' {
		return 0
	}
	j := i + 1
	for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
		j++
	}
	if j == i+1 {
		return 0
	}
	return j - i
}

func countMarkers(sql string, quote byte, marker func(string, int) int) int {
	n := 0
	quoted := false
	for i := 0; i < len(sql); i++ {
		if sql[i] == quote {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		if l := marker(sql, i); l > 0 {
			n++
			i += l - 1
		}
	}
	return n
}
