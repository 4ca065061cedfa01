// Package metrics measures tracking performance: frame rate, per-frame
// timing logs, and summary statistics over recorded samples.
package metrics

import (
	"sync"
	"time"
)

// DefaultFPSInterval is how often FPSMeter recomputes its rate.
const DefaultFPSInterval = time.Second

// FPSMeter counts frames and publishes a rate once per interval.
type FPSMeter struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	start    time.Time
	count    int
	fps      float64
}

// NewFPSMeter creates a meter. A non-positive interval uses DefaultFPSInterval.
func NewFPSMeter(interval time.Duration) *FPSMeter {
	if interval <= 0 {
		interval = DefaultFPSInterval
	}
	return &FPSMeter{interval: interval, now: time.Now}
}

// Tick counts one frame. It returns the current rate and whether the rate
// was recomputed by this call.
func (m *FPSMeter) Tick() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.start.IsZero() {
		m.start = now
	}
	m.count++

	elapsed := now.Sub(m.start)
	if elapsed < m.interval {
		return m.fps, false
	}

	m.fps = float64(m.count) / elapsed.Seconds()
	m.count = 0
	m.start = now
	return m.fps, true
}

// FPS returns the last computed rate.
func (m *FPSMeter) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}
