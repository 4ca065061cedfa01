package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFPSMeter(t *testing.T) {
	m := NewFPSMeter(time.Second)
	now := time.Unix(0, 0)
	m.now = func() time.Time { return now }

	for i := 0; i < 30; i++ {
		_, updated := m.Tick()
		assert.False(t, updated)
		now = now.Add(33 * time.Millisecond)
	}

	// 31 frames over 990ms is still inside the first interval.
	_, updated := m.Tick()
	assert.False(t, updated)

	now = now.Add(10 * time.Millisecond)
	fps, updated := m.Tick()
	require.True(t, updated)
	assert.InDelta(t, 32.0, fps, 1e-9)
	assert.Equal(t, fps, m.FPS())
}

func TestTimingLog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "timing.txt")

	log, err := OpenTimingLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Record(1500*time.Microsecond))
	require.NoError(t, log.Record(2500*time.Microsecond))
	require.NoError(t, log.Close())

	// Reopening appends.
	log, err = OpenTimingLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Record(2*time.Millisecond))
	require.NoError(t, log.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1500\n2500\n2000\n", string(raw))

	values, err := ReadTimingFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1500, 2500, 2000}, values)
	assert.InDelta(t, 2000, Average(values), 1e-9)
}

func TestReadTimings(t *testing.T) {
	values, err := ReadTimings(strings.NewReader("10\n\n 20.5 \n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20.5}, values)

	_, err = ReadTimings(strings.NewReader("10\nabc\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestAverage_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
}

func TestSummarize(t *testing.T) {
	samples := []Sample{
		{Detected: true, X: 1, Y: 10, LatencyUS: 100},
		{Detected: true, X: 3, Y: 10, LatencyUS: 200},
		{Detected: false, LatencyUS: 300},
		{Detected: true, X: 2, Y: 10, LatencyUS: 400},
	}

	s := Summarize(samples)
	assert.Equal(t, 4, s.Frames)
	assert.Equal(t, 3, s.Detected)
	assert.InDelta(t, 75, s.DetectionRate, 1e-9)
	// population std-dev of {1,3,2}
	assert.InDelta(t, 0.816496580927726, s.JitterX, 1e-9)
	assert.InDelta(t, 0, s.JitterY, 1e-12)
	assert.InDelta(t, 250, s.MeanLatencyUS, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestLocalizationError(t *testing.T) {
	samples := []Sample{
		{Detected: true, X: 3, Y: 4},
		{Detected: true, X: 0, Y: 0},
		{Detected: false, X: 100, Y: 100},
	}
	assert.InDelta(t, 2.5, LocalizationError(samples, 0, 0), 1e-9)
	assert.Equal(t, 0.0, LocalizationError(nil, 0, 0))
}
