// Package executor runs compiled statements on database/sql.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/query/errs"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
	"github.com/satishbabariya/sqlorm/runtime/types"
)

// Conn is the part of *sql.DB and *sql.Tx the executor needs.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ Conn = (*sql.DB)(nil)
	_ Conn = (*sql.Tx)(nil)
)

// Option configures an Executor.
type Option func(*Executor)

// WithNormalizer replaces types.DefaultNormalizer.
func WithNormalizer(n types.Normalizer) Option {
	return func(e *Executor) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// Executor runs statements on a Conn. Parameters are normalized right before
// each driver call. Driver failures come back as execution errors with the
// driver error still reachable through errors.As. Nothing is retried.
type Executor struct {
	conn       Conn
	normalizer types.Normalizer
}

// New creates an executor over conn.
func New(conn Conn, opts ...Option) *Executor {
	e := &Executor{conn: conn, normalizer: types.DefaultNormalizer}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithConn returns a copy of e that runs on conn, typically a transaction.
func (e *Executor) WithConn(conn Conn) *Executor {
	return &Executor{conn: conn, normalizer: e.normalizer}
}

// Exec runs a write and returns the number of affected rows.
func (e *Executor) Exec(ctx context.Context, st *sqlgen.Statement) (int64, error) {
	args, err := e.args("exec", st)
	if err != nil {
		return 0, err
	}
	res, err := e.conn.ExecContext(ctx, st.SQL, args...)
	if err != nil {
		return 0, e.fail("exec", st, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, e.fail("exec", st, err)
	}
	return n, nil
}

// Query runs a read. The caller must close the rows.
func (e *Executor) Query(ctx context.Context, st *sqlgen.Statement) (*sql.Rows, error) {
	args, err := e.args("query", st)
	if err != nil {
		return nil, err
	}
	rows, err := e.conn.QueryContext(ctx, st.SQL, args...)
	if err != nil {
		return nil, e.fail("query", st, err)
	}
	return rows, nil
}

// QueryInt runs a single-value read such as COUNT(*).
func (e *Executor) QueryInt(ctx context.Context, st *sqlgen.Statement) (int64, error) {
	rows, err := e.Query(ctx, st)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, e.fail("query", st, err)
		}
		return 0, e.fail("query", st, sql.ErrNoRows)
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, e.fail("query", st, err)
	}
	return n, nil
}

func (e *Executor) args(op string, st *sqlgen.Statement) ([]any, error) {
	if st == nil {
		return nil, errs.Build(op, "", fmt.Errorf("%w: nil statement", errs.ErrInvalidQuery))
	}
	args, err := types.NormalizeArgs(e.normalizer, st.Args)
	if err != nil {
		return nil, errs.Build(op, "", err)
	}
	return args, nil
}

func (e *Executor) fail(op string, st *sqlgen.Statement, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		debug.Debug("statement cancelled", "op", op, "sql", st.SQL)
	} else {
		debug.Warn("statement failed", "op", op, "sql", st.SQL, "error", err)
	}
	return errs.Execution(op, "", err)
}
