package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "timestamp,open,high,low,close,volume\n"+
		"1709251200000,100,101,99,100.5,12\n"+
		"1709251260000,100.5,102,100,101.5,8\n")

	bars, dropped, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 101.5, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestLoadCSVDropsMalformedRows(t *testing.T) {
	path := writeCSV(t, "1709251200000,100,101,99,100.5,12\n"+
		"not-a-timestamp,100,101,99,100.5,12\n"+
		"1709251260000,100.5,oops,100,101.5,8\n"+
		"1709251320000,101,103\n"+
		"1709251380000,101.5,103,101,102.5,4\n")

	bars, dropped, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)
	require.Len(t, bars, 2)
}
