// Package schema maps logical model and field names to physical tables and
// columns.
//
// The compiler never consults global state: it is handed a Resolver and asks
// it for every table and column it emits. Registry is the usual
// implementation and is built either in code or from a schema file.
package schema

// Resolver maps logical names to physical names and reports the
// soft-delete and updated-at columns of a model.
//
// Implementations must be deterministic and safe for concurrent reads.
// Failures should be classified with errs.Resolution so callers can tell
// them apart from build errors.
type Resolver interface {
	TableName(model string) (string, error)
	ColumnName(model, field string) (string, error)
	SoftDeleteColumn(model string) (column string, ok bool, err error)
	UpdatedAtColumn(model string) (column string, ok bool, err error)
}

// Passthrough resolves every name to itself. It has no soft-delete or
// updated-at columns.
type Passthrough struct{}

var _ Resolver = Passthrough{}

func (Passthrough) TableName(model string) (string, error) { return model, nil }

func (Passthrough) ColumnName(_, field string) (string, error) { return field, nil }

func (Passthrough) SoftDeleteColumn(string) (string, bool, error) { return "", false, nil }

func (Passthrough) UpdatedAtColumn(string) (string, bool, error) { return "", false, nil }
