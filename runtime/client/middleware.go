package client

import (
	"context"
	"time"

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
)

// QueryEvent describes one statement execution. Duration, End and Err are
// filled in once the statement has run.
type QueryEvent struct {
	Op       string
	Model    string
	SQL      string
	Args     []any
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Err      error
}

// Middleware wraps statement execution. It must call next exactly once to
// run the statement, unless it decides to fail the call.
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

func (s *session) run(ctx context.Context, op, model string, st *sqlgen.Statement, exec func() error) error {
	if len(s.middlewares) == 0 {
		return exec()
	}

	event := &QueryEvent{
		Op:    op,
		Model: model,
		SQL:   st.SQL,
		Args:  st.Args,
		Start: time.Now(),
	}

	index := 0
	var next func() error
	next = func() error {
		if index >= len(s.middlewares) {
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Err = err
			return err
		}
		mw := s.middlewares[index]
		index++
		return mw(ctx, event, next)
	}
	return next()
}

// LoggingMiddleware logs every statement at debug level and failures at
// warn level.
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		log := debug.With("op", event.Op, "model", event.Model)
		err := next()
		if err != nil {
			log.Warn("query failed", "sql", event.SQL, "duration", event.Duration, "error", err)
			return err
		}
		log.Debug("query executed", "sql", event.SQL, "args", len(event.Args), "duration", event.Duration)
		return nil
	}
}

// TimingMiddleware reports the duration of every statement.
func TimingMiddleware(onTiming func(event *QueryEvent)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event)
		}
		return err
	}
}

// ErrorMiddleware reports failed statements.
func ErrorMiddleware(onError func(event *QueryEvent, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event, err)
		}
		return err
	}
}
