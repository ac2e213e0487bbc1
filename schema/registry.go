package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/satishbabariya/sqlorm/query/errs"
)

// ErrInvalidSchema is returned when a set of models cannot form a registry.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Field is a model field and the column that stores it.
type Field struct {
	Name     string
	Column   string
	Type     string
	Optional bool
	ID       bool
}

// Model is a logical entity and the table that stores it.
// SoftDelete and UpdatedAt hold physical column names; empty means the
// model has no such column. MorphType is the value stored in the type column
// of polymorphic relations pointing at the model and defaults to Name.
type Model struct {
	Name       string
	Table      string
	Fields     []Field
	SoftDelete string
	UpdatedAt  string
	MorphType  string
}

// Field looks a field up by logical or physical name.
func (m *Model) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range m.Fields {
		if f.Column == name {
			return f, true
		}
	}
	return Field{}, false
}

// Registry is a read-only Resolver over a fixed set of models.
type Registry struct {
	models  map[string]*Model
	byTable map[string]*Model
}

var _ Resolver = (*Registry)(nil)

// NewRegistry validates models and indexes them. Missing table or column
// names default to the snake_case form of the logical name.
func NewRegistry(models ...Model) (*Registry, error) {
	r := &Registry{
		models:  make(map[string]*Model, len(models)),
		byTable: make(map[string]*Model, len(models)),
	}
	for i := range models {
		m := models[i]
		if m.Name == "" {
			return nil, fmt.Errorf("%w: model without a name", ErrInvalidSchema)
		}
		if _, dup := r.models[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate model %q", ErrInvalidSchema, m.Name)
		}
		if m.Table == "" {
			m.Table = SnakeCase(m.Name)
		}
		if m.MorphType == "" {
			m.MorphType = m.Name
		}
		if _, dup := r.byTable[m.Table]; dup {
			return nil, fmt.Errorf("%w: table %q mapped twice", ErrInvalidSchema, m.Table)
		}

		fields := make([]Field, len(m.Fields))
		seen := make(map[string]bool, len(m.Fields))
		for j, f := range m.Fields {
			if seen[f.Name] {
				return nil, fmt.Errorf("%w: duplicate field %s.%s", ErrInvalidSchema, m.Name, f.Name)
			}
			seen[f.Name] = true
			if f.Column == "" {
				f.Column = SnakeCase(f.Name)
			}
			fields[j] = f
		}
		m.Fields = fields

		r.models[m.Name] = &m
		r.byTable[m.Table] = &m
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error.
func MustRegistry(models ...Model) *Registry {
	r, err := NewRegistry(models...)
	if err != nil {
		panic(err)
	}
	return r
}

// Model returns the named model. Table names are accepted too.
func (r *Registry) Model(name string) (Model, bool) {
	m := r.lookup(name)
	if m == nil {
		return Model{}, false
	}
	return *m, true
}

// Models returns all models sorted by name.
func (r *Registry) Models() []Model {
	out := make([]Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) lookup(name string) *Model {
	if m, ok := r.models[name]; ok {
		return m
	}
	return r.byTable[name]
}

func (r *Registry) model(op, name string) (*Model, error) {
	m := r.lookup(name)
	if m == nil {
		return nil, errs.Resolution(op, name, errs.ErrTableNotFound)
	}
	return m, nil
}

// TableName implements Resolver.
func (r *Registry) TableName(model string) (string, error) {
	m, err := r.model("table name", model)
	if err != nil {
		return "", err
	}
	return m.Table, nil
}

// ColumnName implements Resolver.
func (r *Registry) ColumnName(model, field string) (string, error) {
	m, err := r.model("column name", model)
	if err != nil {
		return "", err
	}
	f, ok := m.Field(field)
	if !ok {
		return "", errs.Resolution("column name", model, fmt.Errorf("%w: %s", errs.ErrColumnNotFound, field))
	}
	return f.Column, nil
}

// SoftDeleteColumn implements Resolver.
func (r *Registry) SoftDeleteColumn(model string) (string, bool, error) {
	m, err := r.model("soft delete column", model)
	if err != nil {
		return "", false, err
	}
	return m.SoftDelete, m.SoftDelete != "", nil
}

// UpdatedAtColumn implements Resolver.
func (r *Registry) UpdatedAtColumn(model string) (string, bool, error) {
	m, err := r.model("updated at column", model)
	if err != nil {
		return "", false, err
	}
	return m.UpdatedAt, m.UpdatedAt != "", nil
}

// MorphType returns the polymorphic type name of model, for use with
// Group.WhereMorph.
func (r *Registry) MorphType(model string) (string, error) {
	m, err := r.model("morph type", model)
	if err != nil {
		return "", err
	}
	return m.MorphType, nil
}
