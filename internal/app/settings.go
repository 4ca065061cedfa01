package app

import (
	"time"

	"github.com/ayusman/headtrack/internal/capture"
	"github.com/ayusman/headtrack/internal/smoothing"
	"github.com/ayusman/headtrack/internal/tracking"
)

// Settings are the runtime toggles shared by the tray, the HTTP API and the
// frame loop. A published Settings value is never mutated; changes go
// through App.UpdateSettings, and the frame loop picks up the latest value
// at the start of each frame.
type Settings struct {
	Strategy   smoothing.Strategy  `json:"strategy"`
	ScaleIndex int                 `json:"scale_index"`
	Paused     bool                `json:"paused"`
	MissPolicy tracking.MissPolicy `json:"miss_policy"`
}

// Scale returns the processing scale factor selected by ScaleIndex.
func (s Settings) Scale() float64 {
	return capture.ScaleFactor(s.ScaleIndex)
}

// NextStrategy returns a copy with the following smoothing strategy.
func (s Settings) NextStrategy() Settings {
	s.Strategy = s.Strategy.Next()
	return s
}

// NextScale returns a copy with the following scale factor selected.
func (s Settings) NextScale() Settings {
	s.ScaleIndex++
	return s.normalized()
}

func (s Settings) normalized() Settings {
	n := len(capture.ScaleFactors)
	s.ScaleIndex = ((s.ScaleIndex % n) + n) % n
	return s
}

// Status is what the frame loop publishes after every frame.
type Status struct {
	Seq       uint64        `json:"seq"`
	Pose      tracking.Pose `json:"pose"`
	Gesture   bool          `json:"gesture"`
	Tracking  bool          `json:"tracking"`
	FPS       float64       `json:"fps"`
	LatencyUS float64       `json:"latency_us"`
	At        time.Time     `json:"at"`
}
