package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, log.InfoLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	require.Equal(t, log.DebugLevel, lvl)

	lvl, err = ParseLevel("warning")
	require.NoError(t, err)
	require.Equal(t, log.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.WarnLevel)
	l.Info("hidden")
	l.Warn("shown", "field", "amount")
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.Contains(t, out, "field=amount")
}

func TestOpenWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "app.log")
	l, closer, err := Open(path, "info")
	require.NoError(t, err)
	l.Info("started")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "started")

	_, _, err = Open(path, "nope")
	require.Error(t, err)
}

func TestOrDiscard(t *testing.T) {
	require.NotNil(t, OrDiscard(nil))
	l := New(&bytes.Buffer{}, log.InfoLevel)
	require.Same(t, l, OrDiscard(l))
}
