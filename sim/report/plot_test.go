package report

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualization_SaveDataAndPlot_WritesImageAndData(t *testing.T) {
	// GIVEN a reward series
	dir := t.TempDir()
	v := NewVisualization(dir, 0)
	data := []float64{-1200.5, -980, -1010.25}

	// WHEN it is saved
	require.NoError(t, v.SaveDataAndPlot(data, "reward", "Episode", "Cumulative negative reward"))

	// THEN the data file has one value per line
	raw, err := os.ReadFile(v.DataPath("reward"))
	require.NoError(t, err)
	assert.Equal(t, "-1200.5\n-980\n-1010.25\n", string(raw))

	// AND the image is a PNG
	img, err := os.ReadFile(v.PlotPath("reward"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")), "expected PNG signature")
	assert.Equal(t, DefaultDPI, v.DPI)
}

func TestVisualization_SaveDataAndPlot_EmptySeriesSkipsImage(t *testing.T) {
	dir := t.TempDir()
	v := NewVisualization(dir, 96)

	require.NoError(t, v.SaveDataAndPlot(nil, "queue", "Episode", "Average queue length (vehicles)"))

	raw, err := os.ReadFile(v.DataPath("queue"))
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.NoFileExists(t, v.PlotPath("queue"))
}

func TestVisualization_SaveDataAndPlot_MissingDir_ReturnsError(t *testing.T) {
	v := NewVisualization(t.TempDir()+"/missing", 96)
	assert.Error(t, v.SaveDataAndPlot([]float64{1}, "delay", "Episode", "Cumulative delay (s)"))
}

func TestYLimits(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		lo, hi float64
		ok     bool
	}{
		{"negative rewards", []float64{-200, -100}, -210, -95, true},
		{"positive delays", []float64{100, 300}, 95, 315, true},
		{"single value", []float64{-40}, -42, -38, true},
		{"crossing zero", []float64{-20, 40}, -21, 42, true},
		{"all zero", []float64{0, 0}, 0, 0, false},
		{"empty", nil, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := YLimits(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.lo, lo, 1e-9)
			assert.InDelta(t, tt.hi, hi, 1e-9)
		})
	}
}
