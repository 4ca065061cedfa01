package tracking

import (
	"fmt"
	"strings"

	"github.com/ayusman/headtrack/internal/estimate"
	"github.com/ayusman/headtrack/internal/landmark"
	"github.com/ayusman/headtrack/internal/smoothing"
)

// MissPolicy decides what the pipeline reports for a frame without a detection.
type MissPolicy int

const (
	// MissHold keeps reporting the last good pose, marked Held.
	MissHold MissPolicy = iota
	// MissClear reports an empty, invalid pose.
	MissClear
)

// String returns the policy name.
func (m MissPolicy) String() string {
	switch m {
	case MissHold:
		return "hold"
	case MissClear:
		return "clear"
	}
	return fmt.Sprintf("MissPolicy(%d)", int(m))
}

// ParseMissPolicy parses "hold" or "clear".
func ParseMissPolicy(s string) (MissPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hold", "":
		return MissHold, nil
	case "clear", "reset":
		return MissClear, nil
	}
	return MissHold, fmt.Errorf("unknown miss policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m MissPolicy) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MissPolicy) UnmarshalText(text []byte) error {
	p, err := ParseMissPolicy(string(text))
	if err != nil {
		return err
	}
	*m = p
	return nil
}

// Config holds the tunable parameters of a Pipeline.
type Config struct {
	// Layout is the landmark index scheme of the detector feeding the pipeline.
	Layout landmark.Layout

	// Strategy selects the per-axis smoother.
	Strategy smoothing.Strategy
	Params   smoothing.Params

	// MissPolicy applies to frames without a detection.
	MissPolicy MissPolicy

	// ResetAfterMisses resets the smoothers after this many consecutive
	// missed frames so a returning subject is not fused with stale state.
	// Zero disables the reset.
	ResetAfterMisses int

	Estimator estimate.Estimator
}

// DefaultConfig returns the configuration for the MediaPipe face landmarker
// with Kalman smoothing.
func DefaultConfig() Config {
	return Config{
		Layout:           landmark.FaceMesh,
		Strategy:         smoothing.StrategyKalman,
		Params:           smoothing.DefaultParams(),
		MissPolicy:       MissHold,
		ResetAfterMisses: 60, // ~2s at 30 fps
		Estimator:        estimate.DefaultEstimator(),
	}
}
