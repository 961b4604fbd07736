package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectionRoundTrip(t *testing.T) {
	f := &File{Dir: filepath.Join(t.TempDir(), "prefs")}

	_, ok, err := f.LoadSelection()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, f.SaveSelection(Selection{RangeMonths: 6, CurrencyCode: "USD"}))
	got, ok, err := f.LoadSelection()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Selection{RangeMonths: 6, CurrencyCode: "USD"}, got)
}

func TestSelectionCorrupt(t *testing.T) {
	f := &File{Dir: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(f.Dir, selectionFile), []byte("{"), 0o600))
	_, _, err := f.LoadSelection()
	require.Error(t, err)
}
