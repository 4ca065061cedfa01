package smoothing

import (
	"fmt"

	kalman_filter "github.com/LdDl/kalman-filter"
)

// Planar filters an (x, y) point with a joint constant-velocity Kalman filter.
// It is lazily seeded from the first measurement.
type Planar struct {
	accelStdDev       float64
	measurementStdDev float64
	tracker           *kalman_filter.Kalman2D
}

// NewPlanar creates a planar filter. Non-positive parameters fall back to
// the defaults.
func NewPlanar(accelStdDev, measurementStdDev float64) *Planar {
	if !(accelStdDev > 0) {
		accelStdDev = DefaultAccelStdDev
	}
	if !(measurementStdDev > 0) {
		measurementStdDev = DefaultMeasurementStdDev
	}
	return &Planar{
		accelStdDev:       accelStdDev,
		measurementStdDev: measurementStdDev,
	}
}

// Update runs predict and correct for one measurement and returns the filtered
// point. On a filter error the measurement is returned unchanged along with
// the error.
func (p *Planar) Update(x, y float64) (float64, float64, error) {
	if p.tracker == nil {
		// Unit time step, no control input.
		p.tracker = kalman_filter.NewKalman2D(
			1.0, 0, 0,
			p.accelStdDev, p.measurementStdDev, p.measurementStdDev,
			kalman_filter.WithState2D(x, y),
		)
	}

	p.tracker.Predict()
	if err := p.tracker.Update(x, y); err != nil {
		return x, y, fmt.Errorf("planar filter update: %w", err)
	}

	fx, fy := p.tracker.GetState()
	return fx, fy, nil
}

// Reset discards the filter; the next Update re-seeds it.
func (p *Planar) Reset() {
	p.tracker = nil
}

// Initialized reports whether the filter has been seeded.
func (p *Planar) Initialized() bool {
	return p.tracker != nil
}
