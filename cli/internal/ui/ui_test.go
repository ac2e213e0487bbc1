package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := Out
	Out = &buf
	t.Cleanup(func() { Out = orig })
	return &buf
}

func TestHighlightSQL(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	color.NoColor = true
	assert.Equal(t, "SELECT * FROM t WHERE (a = ?)", HighlightSQL("SELECT * FROM t WHERE (a = ?)"))

	color.NoColor = false
	got := HighlightSQL("SELECT * FROM t WHERE (a = $1)")
	assert.NotEqual(t, "SELECT * FROM t WHERE (a = $1)", got)
	assert.Contains(t, got, "$1")
}

func TestPrintSQLAndTable(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
	buf := capture(t)

	PrintSQL("SELECT 1", []any{"a", 2})
	assert.Contains(t, buf.String(), "SELECT 1\n")
	assert.Contains(t, buf.String(), "-- 1: a, 2: 2")

	buf.Reset()
	require.NoError(t, PrintTable([]string{"Model", "Table"}, [][]string{{"User", "users"}}))
	assert.Contains(t, buf.String(), "users")
}
