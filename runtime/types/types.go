// Package types provides the domain value types understood by the query
// layer and the hook that turns them into driver values.
package types

import "time"

// DateTime represents a timestamp
type DateTime = time.Time

// JSON marks a value to be stored as a JSON document.
type JSON struct {
	Value any
}

// NewJSON wraps v for JSON storage.
func NewJSON(v any) JSON {
	return JSON{Value: v}
}

// Decimal represents a decimal number kept in its exact textual form.
type Decimal struct {
	value string
}

// NewDecimal creates a new decimal from string
func NewDecimal(value string) Decimal {
	return Decimal{value: value}
}

// String returns the string representation
func (d Decimal) String() string {
	return d.value
}

// Enum is implemented by enum-like values that are stored by name.
type Enum interface {
	EnumName() string
}
