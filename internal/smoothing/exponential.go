package smoothing

// Exponential is a first-order IIR low-pass filter:
// out = alpha*m + (1-alpha)*previous.
type Exponential struct {
	alpha       float64
	value       float64
	initialized bool
}

// NewExponential creates an exponential smoother. Alpha outside (0, 1] falls
// back to DefaultAlpha.
func NewExponential(alpha float64) *Exponential {
	if !(alpha > 0 && alpha <= 1) {
		alpha = DefaultAlpha
	}
	return &Exponential{alpha: alpha}
}

// Update applies exponential smoothing. The first measurement is returned as-is.
func (e *Exponential) Update(measurement float64) float64 {
	if !e.initialized {
		e.value = measurement
		e.initialized = true
		return measurement
	}

	e.value = e.alpha*measurement + (1-e.alpha)*e.value
	return e.value
}

// Value returns the current smoothed value.
func (e *Exponential) Value() float64 {
	return e.value
}

// Alpha returns the smoothing factor.
func (e *Exponential) Alpha() float64 {
	return e.alpha
}

// Reset clears the smoother state.
func (e *Exponential) Reset() {
	e.value = 0
	e.initialized = false
}

// Initialized reports whether a measurement has been seen since the last Reset.
func (e *Exponential) Initialized() bool {
	return e.initialized
}
