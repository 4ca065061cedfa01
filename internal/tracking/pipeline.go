// Package tracking turns one frame's landmarks into a stable engine-space
// pose: reference point selection, distance estimation, per-axis smoothing
// and normalization.
package tracking

import (
	"fmt"

	"github.com/ayusman/headtrack/internal/coords"
	"github.com/ayusman/headtrack/internal/estimate"
	"github.com/ayusman/headtrack/internal/landmark"
	"github.com/ayusman/headtrack/internal/log"
	"github.com/ayusman/headtrack/internal/smoothing"
)

// State is the pipeline's lifecycle state.
type State int

const (
	// StateUninitialized means no smoother has seen a measurement yet.
	StateUninitialized State = iota
	// StateTracking means the smoothers are warm.
	StateTracking
)

// String returns the state name.
func (s State) String() string {
	if s == StateTracking {
		return "tracking"
	}
	return "uninitialized"
}

// Pose is the pipeline's current best estimate.
type Pose struct {
	// X and Y are normalized to [-1, 1], origin at the frame center, y up.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Z is the rescaled distance; it has no hard bound.
	Z float64 `json:"z"`

	// RefX and RefY are the raw (unsmoothed) reference point in pixels.
	RefX float64 `json:"ref_x"`
	RefY float64 `json:"ref_y"`

	DistanceCM float64 `json:"distance_cm"`

	// Valid is false until the first detection, and after a miss under MissClear.
	Valid bool `json:"valid"`
	// Held marks a pose carried over from an earlier frame.
	Held bool `json:"held"`
}

// Observation is the raw measurement derived from one frame's landmarks.
type Observation struct {
	PixelX      float64
	PixelY      float64
	FaceWidthPx float64
	DistanceCM  float64
	Z           float64
}

// Pipeline converts per-frame landmark sets into smoothed poses.
// A Pipeline is not safe for concurrent use: smoother state is mutated on
// every call, so Process must be called from a single goroutine.
type Pipeline struct {
	config Config

	// Under StrategyKalman2D planar filters x and y jointly and x, y are nil.
	x, y, z smoothing.Smoother
	planar  *smoothing.Planar

	pose   Pose
	last   Observation
	state  State
	misses int
}

// New creates a Pipeline in the Uninitialized state.
func New(config Config) *Pipeline {
	if config.Estimator == (estimate.Estimator{}) {
		config.Estimator = estimate.DefaultEstimator()
	}
	if config.Layout.Name == "" {
		config.Layout = landmark.FaceMesh
	}

	p := &Pipeline{config: config}
	p.buildSmoothers()
	return p
}

func (p *Pipeline) buildSmoothers() {
	s := p.config.Strategy
	p.z = smoothing.New(s, p.config.Params)
	if s == smoothing.StrategyKalman2D {
		p.x, p.y = nil, nil
		p.planar = smoothing.NewPlanar(p.config.Params.AccelStdDev, p.config.Params.MeasurementStdDev)
	} else {
		p.x = smoothing.New(s, p.config.Params)
		p.y = smoothing.New(s, p.config.Params)
		p.planar = nil
	}
	p.state = StateUninitialized
}

// Process consumes one frame's detection. A nil or empty set is a missed
// frame and is handled by the configured MissPolicy. A set that does not
// match the layout returns an error wrapping landmark.ErrLayoutMismatch; the
// pose is left unchanged.
func (p *Pipeline) Process(set *landmark.Set, width, height int) (Pose, error) {
	if set.Len() == 0 {
		return p.miss(), nil
	}

	obs, err := p.observe(set, width, height)
	if err != nil {
		return p.pose, fmt.Errorf("process frame: %w", err)
	}

	sx, sy := p.smoothXY(obs.PixelX, obs.PixelY)
	sz := p.z.Update(obs.Z)

	p.last = obs
	p.misses = 0
	p.state = StateTracking
	p.pose = Pose{
		X:          coords.Clamp(coords.NormalizeX(sx, float64(width))),
		Y:          coords.Clamp(coords.NormalizeY(sy, float64(height))),
		Z:          sz,
		RefX:       obs.PixelX,
		RefY:       obs.PixelY,
		DistanceCM: obs.DistanceCM,
		Valid:      true,
	}

	return p.pose, nil
}

func (p *Pipeline) observe(set *landmark.Set, width, height int) (Observation, error) {
	layout := p.config.Layout
	if err := layout.Validate(set); err != nil {
		return Observation{}, err
	}

	ref, err := layout.ReferencePoint(set)
	if err != nil {
		return Observation{}, err
	}
	faceWidth, err := layout.Width(set)
	if err != nil {
		return Observation{}, err
	}

	obs := Observation{
		PixelX:      coords.ToPixels(ref.X, width),
		PixelY:      coords.ToPixels(ref.Y, height),
		FaceWidthPx: coords.ToPixels(faceWidth, width),
	}
	obs.DistanceCM = p.config.Estimator.Estimate(obs.FaceWidthPx)
	obs.Z = estimate.DepthZ(obs.DistanceCM)

	return obs, nil
}

func (p *Pipeline) smoothXY(px, py float64) (float64, float64) {
	if p.planar == nil {
		return p.x.Update(px), p.y.Update(py)
	}

	fx, fy, err := p.planar.Update(px, py)
	if err != nil {
		log.Warn("planar smoothing failed, using raw point", "error", err)
	}
	return fx, fy
}

func (p *Pipeline) miss() Pose {
	p.misses++

	if n := p.config.ResetAfterMisses; n > 0 && p.misses >= n && p.state == StateTracking {
		log.Debug("detection gap, resetting smoothers", "misses", p.misses)
		p.resetSmoothers()
	}

	switch p.config.MissPolicy {
	case MissClear:
		p.pose = Pose{}
	default:
		if p.pose.Valid {
			p.pose.Held = true
		}
	}

	return p.pose
}

func (p *Pipeline) resetSmoothers() {
	p.z.Reset()
	if p.planar != nil {
		p.planar.Reset()
	} else {
		p.x.Reset()
		p.y.Reset()
	}
	p.state = StateUninitialized
}

// SetStrategy switches the smoothing strategy. New smoothers start
// uninitialized; the current pose is kept.
func (p *Pipeline) SetStrategy(s smoothing.Strategy) {
	if s == p.config.Strategy {
		return
	}
	p.config.Strategy = s
	p.buildSmoothers()
}

// SetMissPolicy changes how missed frames are reported.
func (p *Pipeline) SetMissPolicy(m MissPolicy) {
	p.config.MissPolicy = m
}

// Reset clears smoother state and the current pose.
func (p *Pipeline) Reset() {
	p.resetSmoothers()
	p.pose = Pose{}
	p.last = Observation{}
	p.misses = 0
}

// Strategy returns the active smoothing strategy.
func (p *Pipeline) Strategy() smoothing.Strategy { return p.config.Strategy }

// MissPolicy returns the active miss policy.
func (p *Pipeline) MissPolicy() MissPolicy { return p.config.MissPolicy }

// Layout returns the landmark layout the pipeline expects.
func (p *Pipeline) Layout() landmark.Layout { return p.config.Layout }

// State returns the lifecycle state.
func (p *Pipeline) State() State { return p.state }

// Pose returns the current pose.
func (p *Pipeline) Pose() Pose { return p.pose }

// LastObservation returns the raw measurement of the last successful frame.
func (p *Pipeline) LastObservation() Observation { return p.last }

// Misses returns the number of consecutive frames without a detection.
func (p *Pipeline) Misses() int { return p.misses }
