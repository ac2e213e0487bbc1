package client

import (
	"context"
	"database/sql"
	"fmt"
)

// IsolationLevel represents transaction isolation levels
type IsolationLevel int

const (
	// LevelDefault leaves the choice to the driver.
	LevelDefault IsolationLevel = iota
	// ReadUncommitted allows dirty reads
	ReadUncommitted
	// ReadCommitted prevents dirty reads
	ReadCommitted
	// RepeatableRead prevents dirty reads and non-repeatable reads
	RepeatableRead
	// Serializable prevents dirty reads, non-repeatable reads, and phantom reads
	Serializable
)

// ToSQLIsolationLevel converts IsolationLevel to sql.IsolationLevel
func (level IsolationLevel) ToSQLIsolationLevel() sql.IsolationLevel {
	switch level {
	case ReadUncommitted:
		return sql.LevelReadUncommitted
	case ReadCommitted:
		return sql.LevelReadCommitted
	case RepeatableRead:
		return sql.LevelRepeatableRead
	case Serializable:
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

// Tx runs the client operations inside a database transaction.
type Tx struct {
	session
	tx    *sql.Tx
	depth int
}

// TransactionFunc is a function that runs within a transaction
type TransactionFunc func(tx *Tx) error

// Transaction runs fn in a transaction. It commits when fn returns nil and
// rolls back when fn returns an error or panics; a panic is re-raised after
// the rollback.
func (c *Client) Transaction(ctx context.Context, fn TransactionFunc) error {
	return c.transaction(ctx, nil, fn)
}

// TransactionWithOptions is Transaction with an isolation level and
// read-only flag.
func (c *Client) TransactionWithOptions(ctx context.Context, level IsolationLevel, readOnly bool, fn TransactionFunc) error {
	return c.transaction(ctx, &sql.TxOptions{Isolation: level.ToSQLIsolationLevel(), ReadOnly: readOnly}, fn)
}

func (c *Client) transaction(ctx context.Context, opts *sql.TxOptions, fn TransactionFunc) error {
	sqlTx, err := c.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	mws := make([]Middleware, len(c.middlewares))
	copy(mws, c.middlewares)
	tx := &Tx{
		session: session{
			compiler:    c.compiler,
			exec:        c.exec.WithConn(sqlTx),
			middlewares: mws,
			cache:       c.cache,
			cacheTTL:    c.cacheTTL,
		},
		tx: sqlTx,
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SQLTx returns the underlying transaction.
func (tx *Tx) SQLTx() *sql.Tx { return tx.tx }

// NestedTransaction runs fn inside a savepoint. An error from fn rolls back
// to the savepoint and is returned; the outer transaction stays usable.
func (tx *Tx) NestedTransaction(ctx context.Context, fn TransactionFunc) error {
	tx.depth++
	defer func() { tx.depth-- }()
	name := fmt.Sprintf("sp_%d", tx.depth)

	if _, err := tx.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_, _ = tx.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if _, rbErr := tx.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("nested transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if _, err := tx.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}
