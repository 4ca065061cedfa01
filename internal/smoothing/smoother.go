// Package smoothing provides single-axis filters for noisy per-frame
// measurements. Every Smoother owns its state and is not safe for concurrent
// use; the tracking pipeline keeps one instance per axis.
package smoothing

// Smoother filters a stream of scalar measurements.
type Smoother interface {
	// Update feeds one measurement and returns the filtered value.
	Update(measurement float64) float64

	// Reset returns the smoother to its uninitialized state.
	Reset()

	// Initialized reports whether Update has been called since the last Reset.
	Initialized() bool
}

// Params configures the smoothers built by New.
type Params struct {
	// Alpha is the exponential smoothing factor in (0, 1].
	Alpha float64 `json:"alpha"`

	// ProcessNoise scales the Kalman process noise covariance (q·I).
	ProcessNoise float64 `json:"process_noise"`

	// MeasurementNoise is the Kalman measurement noise variance.
	MeasurementNoise float64 `json:"measurement_noise"`

	// AccelStdDev and MeasurementStdDev configure the planar filter.
	AccelStdDev       float64 `json:"accel_std_dev"`
	MeasurementStdDev float64 `json:"measurement_std_dev"`
}

// Default parameters.
const (
	DefaultAlpha             = 0.7
	DefaultProcessNoise      = 0.03
	DefaultMeasurementNoise  = 1.0
	DefaultAccelStdDev       = 2.0
	DefaultMeasurementStdDev = 2.0
)

// DefaultParams returns Params with the default values.
func DefaultParams() Params {
	return Params{
		Alpha:             DefaultAlpha,
		ProcessNoise:      DefaultProcessNoise,
		MeasurementNoise:  DefaultMeasurementNoise,
		AccelStdDev:       DefaultAccelStdDev,
		MeasurementStdDev: DefaultMeasurementStdDev,
	}
}

// New builds a scalar smoother for the strategy. StrategyKalman2D returns a
// scalar Kalman filter: the planar filter only covers x and y, so callers use
// this for the remaining axis.
func New(s Strategy, p Params) Smoother {
	switch s {
	case StrategyExponential:
		return NewExponential(p.Alpha)
	case StrategyKalman, StrategyKalman2D:
		return NewKalman(p.ProcessNoise, p.MeasurementNoise)
	default:
		return &Passthrough{}
	}
}

// Passthrough returns measurements unchanged.
type Passthrough struct {
	initialized bool
}

// Update returns the measurement.
func (p *Passthrough) Update(measurement float64) float64 {
	p.initialized = true
	return measurement
}

// Reset clears the initialized flag.
func (p *Passthrough) Reset() { p.initialized = false }

// Initialized reports whether Update has been called.
func (p *Passthrough) Initialized() bool { return p.initialized }
