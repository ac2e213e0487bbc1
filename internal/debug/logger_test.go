package debug

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWriter(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelWarn)
	assert.True(t, Enabled())

	Debug("hidden")
	Info("hidden too")
	Warn("shown", "op", "select")
	With("model", "User").Error("scoped")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "op=select")
	assert.Contains(t, out, "msg=scoped model=User")
}

func TestDisabledDiscards(t *testing.T) {
	Init(false)
	assert.False(t, Enabled())
	assert.NotPanics(t, func() { Error("nothing", "k", 1) })
	assert.NotNil(t, With("k", "v"))
}
