package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Normalizer converts a parameter into a value the driver accepts.
// It runs on every parameter right before execution. Compiled statements
// carry the raw values.
type Normalizer interface {
	Normalize(v any) (driver.Value, error)
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(v any) (driver.Value, error)

// Normalize calls f(v).
func (f NormalizerFunc) Normalize(v any) (driver.Value, error) { return f(v) }

// DefaultNormalizer handles nil, uuid.UUID, driver.Valuer, Enum, Decimal,
// JSON and time.Time, dereferences pointers, and hands everything else to
// driver.DefaultParameterConverter.
var DefaultNormalizer Normalizer = NormalizerFunc(normalize)

func normalize(v any) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case uuid.UUID:
		return x.String(), nil
	case driver.Valuer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, nil
		}
		return x.Value()
	case Enum:
		return x.EnumName(), nil
	case Decimal:
		return x.String(), nil
	case JSON:
		b, err := json.Marshal(x.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON parameter: %w", err)
		}
		return b, nil
	case time.Time:
		return x, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		return normalize(rv.Elem().Interface())
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

// NormalizeArgs normalizes every argument, keeping the order. A nil n uses
// DefaultNormalizer.
func NormalizeArgs(n Normalizer, args []any) ([]any, error) {
	if n == nil {
		n = DefaultNormalizer
	}
	out := make([]any, len(args))
	for i, a := range args {
		v, err := n.Normalize(a)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
