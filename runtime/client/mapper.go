package client

import (
	"context"
	"database/sql"
	"reflect"
	"strings"

	"github.com/satishbabariya/sqlorm/query/ast"
)

// Finder runs a row query. Client and Tx implement it.
type Finder interface {
	Find(ctx context.Context, q *ast.Query) (*sql.Rows, error)
}

// FindAll runs q and scans every row into a T.
func FindAll[T any](ctx context.Context, f Finder, q *ast.Query) ([]T, error) {
	rows, err := f.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanRows[T](rows)
}

// ScanRows scans SQL rows into a slice of structs. Columns are matched to
// fields by db tag, then by name ignoring case. Unmatched columns are
// discarded.
func ScanRows[T any](rows *sql.Rows) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []T
	for rows.Next() {
		var result T
		val := reflect.Indirect(reflect.ValueOf(&result))
		targets := make([]any, len(columns))
		for i, col := range columns {
			if idx, ok := fieldIndex(val.Type(), col); ok {
				targets[i] = val.FieldByIndex(idx).Addr().Interface()
			} else {
				targets[i] = new(any)
			}
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ResultSet holds rows scanned without a target type.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// ScanAll scans every row as raw values. Byte slices are converted to
// strings.
func ScanAll(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

func fieldIndex(typ reflect.Type, column string) ([]int, bool) {
	if typ.Kind() != reflect.Struct {
		return nil, false
	}
	var fallback []int
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(field.Tag.Get("db"), ","); tag != "" {
			if tag == column {
				return field.Index, true
			}
			continue
		}
		if fallback == nil && strings.EqualFold(field.Name, strings.ReplaceAll(column, "_", "")) {
			fallback = field.Index
		}
	}
	return fallback, fallback != nil
}
