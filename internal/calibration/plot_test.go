package calibration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlot(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	m, err := Fit(table)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fit.png")
	require.NoError(t, Plot(table, m, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPlot_Errors(t *testing.T) {
	t.Parallel()

	m := Model{A: 0.003, B: -1.2, C: 137}

	err := Plot(nil, m, filepath.Join(t.TempDir(), "empty.png"))
	assert.ErrorIs(t, err, ErrCalibration)

	err = Plot(DefaultTable(), m, filepath.Join(t.TempDir(), "fit.unknown"))
	assert.Error(t, err)
}
