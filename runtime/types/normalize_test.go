package types_test

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/runtime/types"
)

type role string

func (r role) EnumName() string { return "ROLE_" + string(r) }

type level int16

func TestDefaultNormalizer(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	name := "bob"
	var nilName *string
	var nilNull *sql.NullString

	tests := []struct {
		name string
		in   any
		want driver.Value
	}{
		{"nil", nil, nil},
		{"nil pointer", nilName, nil},
		{"nil valuer pointer", nilNull, nil},
		{"valuer", sql.NullInt64{Int64: 7, Valid: true}, int64(7)},
		{"invalid valuer", sql.NullString{}, nil},
		{"enum", role("ADMIN"), "ROLE_ADMIN"},
		{"uuid", id, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"decimal", types.NewDecimal("10.25"), "10.25"},
		{"json", types.NewJSON(map[string]int{"a": 1}), []byte(`{"a":1}`)},
		{"time", now, now},
		{"pointer", &name, "bob"},
		{"named int", level(3), int64(3)},
		{"uint8", uint8(9), int64(9)},
		{"bool", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.DefaultNormalizer.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultNormalizerRejectsStructs(t *testing.T) {
	_, err := types.DefaultNormalizer.Normalize(struct{ A int }{1})
	assert.Error(t, err)
}

func TestNormalizeArgs(t *testing.T) {
	out, err := types.NormalizeArgs(nil, []any{role("X"), 1, nil})
	require.NoError(t, err)
	assert.Equal(t, []any{"ROLE_X", int64(1), nil}, out)

	boom := errors.New("boom")
	failing := types.NormalizerFunc(func(v any) (driver.Value, error) {
		if v == 2 {
			return nil, boom
		}
		return v, nil
	})
	_, err = types.NormalizeArgs(failing, []any{1, 2})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "parameter 2")
}
