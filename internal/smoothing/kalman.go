package smoothing

import (
	"gonum.org/v1/gonum/mat"
)

// Kalman is a one-dimensional constant-velocity Kalman filter.
// State is [position, velocity]; only position is measured. The transition
// assumes a unit time step per update, so an unstable frame rate shows up as
// model error rather than being compensated.
type Kalman struct {
	processNoise     float64
	measurementNoise float64

	f *mat.Dense // transition
	h *mat.Dense // measurement
	q *mat.Dense // process noise covariance

	x *mat.VecDense // state
	p *mat.Dense    // state covariance

	initialized bool
}

// NewKalman creates a constant-velocity Kalman filter. Non-positive noise
// values fall back to the defaults.
func NewKalman(processNoise, measurementNoise float64) *Kalman {
	if !(processNoise > 0) {
		processNoise = DefaultProcessNoise
	}
	if !(measurementNoise > 0) {
		measurementNoise = DefaultMeasurementNoise
	}

	q := identity2()
	q.Scale(processNoise, q)

	return &Kalman{
		processNoise:     processNoise,
		measurementNoise: measurementNoise,
		f:                mat.NewDense(2, 2, []float64{1, 1, 0, 1}),
		h:                mat.NewDense(1, 2, []float64{1, 0}),
		q:                q,
	}
}

// Update runs one predict/correct cycle and returns the corrected position.
// The first call seeds the state with [measurement, 0] and unit covariance.
func (k *Kalman) Update(measurement float64) float64 {
	if !k.initialized {
		k.x = mat.NewVecDense(2, []float64{measurement, 0})
		k.p = identity2()
		k.initialized = true
	}

	// Predict: x = F x, P = F P F' + Q
	var xPred mat.VecDense
	xPred.MulVec(k.f, k.x)

	var fp, pPred mat.Dense
	fp.Mul(k.f, k.p)
	pPred.Mul(&fp, k.f.T())
	pPred.Add(&pPred, k.q)

	// Correct: K = P H' / (H P H' + R)
	var pht mat.Dense
	pht.Mul(&pPred, k.h.T())
	innovation := mat.Dot(k.h.RowView(0), pht.ColView(0)) + k.measurementNoise

	var gain mat.Dense
	gain.Scale(1/innovation, &pht)

	residual := measurement - mat.Dot(k.h.RowView(0), &xPred)

	var x mat.VecDense
	x.AddScaledVec(&xPred, residual, gain.ColView(0))

	// P = (I - K H) P
	var kh, ikh, p mat.Dense
	kh.Mul(&gain, k.h)
	ikh.Sub(identity2(), &kh)
	p.Mul(&ikh, &pPred)

	k.x = &x
	k.p = &p

	return k.x.AtVec(0)
}

// Position returns the current position estimate.
func (k *Kalman) Position() float64 {
	if !k.initialized {
		return 0
	}
	return k.x.AtVec(0)
}

// Velocity returns the current velocity estimate, in units per update.
func (k *Kalman) Velocity() float64 {
	if !k.initialized {
		return 0
	}
	return k.x.AtVec(1)
}

// PositionVariance returns the position entry of the state covariance.
func (k *Kalman) PositionVariance() float64 {
	if !k.initialized {
		return 0
	}
	return k.p.At(0, 0)
}

// Reset discards the state; the next Update re-seeds it.
func (k *Kalman) Reset() {
	k.x = nil
	k.p = nil
	k.initialized = false
}

// Initialized reports whether the filter has been seeded.
func (k *Kalman) Initialized() bool {
	return k.initialized
}

func identity2() *mat.Dense {
	return mat.NewDense(2, 2, []float64{1, 0, 0, 1})
}
