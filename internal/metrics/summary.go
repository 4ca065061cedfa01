package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Sample is one processed frame as seen by the metrics.
type Sample struct {
	Detected bool
	// X and Y are the tracked point; they are only meaningful when Detected.
	X, Y      float64
	LatencyUS float64
}

// Summary aggregates a run of samples.
type Summary struct {
	Frames   int `json:"frames"`
	Detected int `json:"detected"`

	// DetectionRate is the percentage of frames with a detection.
	DetectionRate float64 `json:"detection_rate"`

	// JitterX and JitterY are the population standard deviations of the
	// detected positions.
	JitterX float64 `json:"jitter_x"`
	JitterY float64 `json:"jitter_y"`

	MeanLatencyUS float64 `json:"mean_latency_us"`
}

// Summarize computes a Summary over samples.
func Summarize(samples []Sample) Summary {
	s := Summary{Frames: len(samples)}
	if len(samples) == 0 {
		return s
	}

	var xs, ys []float64
	latencies := make([]float64, 0, len(samples))
	for _, sample := range samples {
		latencies = append(latencies, sample.LatencyUS)
		if !sample.Detected {
			continue
		}
		s.Detected++
		xs = append(xs, sample.X)
		ys = append(ys, sample.Y)
	}

	s.DetectionRate = float64(s.Detected) / float64(s.Frames) * 100
	s.JitterX = popStdDev(xs)
	s.JitterY = popStdDev(ys)
	s.MeanLatencyUS = stat.Mean(latencies, nil)

	return s
}

// LocalizationError returns the mean Euclidean distance between the detected
// samples and a known target position, or 0 when nothing was detected.
func LocalizationError(samples []Sample, targetX, targetY float64) float64 {
	var errs []float64
	for _, s := range samples {
		if s.Detected {
			errs = append(errs, math.Hypot(s.X-targetX, s.Y-targetY))
		}
	}
	if len(errs) == 0 {
		return 0
	}
	return stat.Mean(errs, nil)
}

func popStdDev(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}
	_, variance := stat.MeanVariance(x, nil)
	return math.Sqrt(variance * float64(n-1) / float64(n))
}
