package logger

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesLogFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, Init())
	defer Close()

	require.FileExists(t, Path())
	assert.True(t, strings.HasSuffix(Path(), logFileName))

	Infof("连接到 %s", "localhost:1780")
	Errorf("测试错误: %v", os.ErrClosed)

	data, err := os.ReadFile(Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO]")
	assert.Contains(t, string(data), "[ERROR]")
}

func TestWirefIsOffByDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, Init())
	defer Close()

	// traceWire is resolved at package init; without the env var the
	// call must be a silent no-op
	Wiref(">>", "ping")

	data, err := os.ReadFile(Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "[WIRE]")
}
