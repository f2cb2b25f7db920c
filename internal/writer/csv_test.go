package writer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WritesSeparatorsHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(path)

	require.NoError(t, w.Start([]string{"primary.close", "ind0.sma"}))
	require.NoError(t, w.Next([]float64{101.5, math.NaN()}))
	require.NoError(t, w.Next([]float64{102, 100.75}))
	require.NoError(t, w.Stop())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, separator, lines[0])
	assert.Equal(t, "primary.close,ind0.sma", lines[1])
	assert.Equal(t, "101.5,nan", lines[2])
	assert.Equal(t, "102,100.75", lines[3])
	assert.Equal(t, separator, lines[4])
}

func TestCSVWriter_FilterNaNWritesEmptyField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(path)
	w.FilterNaN = true

	require.NoError(t, w.Start([]string{"v"}))
	require.NoError(t, w.Next([]float64{math.NaN()}))
	require.NoError(t, w.Stop())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, "", lines[2])
}

func TestCSVWriter_RoundLimitsDecimalPlaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(path)
	w.Round = 2

	require.NoError(t, w.Start([]string{"v"}))
	require.NoError(t, w.Next([]float64{1.0 / 3}))
	require.NoError(t, w.Stop())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, "0.33", lines[2])
}
