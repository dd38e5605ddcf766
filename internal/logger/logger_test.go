package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorContains(t, err, `"verbose"`)
}

func TestNew_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Environment: "production"})
	require.NoError(t, err)

	l.Info("table loaded", "rows", 3)
	assert.Contains(t, buf.String(), `"msg":"table loaded"`)
	assert.Contains(t, buf.String(), `"rows":3`)
}

func TestNew_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Environment: "development"})
	require.NoError(t, err)

	l.Info("table loaded", "rows", 3)
	assert.Contains(t, buf.String(), `msg="table loaded" rows=3`)
}

func TestNew_LevelFlags(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Level: "error", Verbose: true})
	require.NoError(t, err)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l, err = New(Options{Writer: &buf, Verbose: true, Quiet: true})
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("kept")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	_, err := Setup(Options{Writer: &buf})
	require.NoError(t, err)
	slog.Info("via default")
	assert.Contains(t, buf.String(), "via default")
}
