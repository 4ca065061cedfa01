package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/headtrack/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// Queued results are returned in order; once the queue is empty the fixed
// result is returned for every frame.
type MockDetector struct {
	mu     sync.Mutex
	layout landmark.Layout
	result Result
	queue  []Result
	err    error
	calls  int
}

// NewMockDetector creates a MockDetector reporting face-mesh sets.
func NewMockDetector() *MockDetector {
	return &MockDetector{layout: landmark.FaceMesh}
}

// SetResult sets the result returned for every frame.
func (m *MockDetector) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// Enqueue appends one-shot results, consumed before the fixed result.
func (m *MockDetector) Enqueue(results ...Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetLayout changes the layout the mock claims to produce.
func (m *MockDetector) SetLayout(l landmark.Layout) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layout = l
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r, nil
	}
	return m.result, nil
}

func (m *MockDetector) Layout() landmark.Layout {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layout
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FaceMeshFixture returns a face-mesh set with the eye midpoint at
// (refX, refY) and the cheeks widthPx apart on a frame frameWidth wide.
func FaceMeshFixture(refX, refY, widthPx float64, frameWidth int) landmark.Set {
	points := make([]landmark.Point3D, landmark.FaceMeshPoints)
	for i := range points {
		points[i] = landmark.Point3D{X: refX, Y: refY}
	}

	const eyeGap = 0.03
	points[landmark.FaceMeshLeftEyeInner] = landmark.Point3D{X: refX - eyeGap, Y: refY}
	points[landmark.FaceMeshRightEyeInner] = landmark.Point3D{X: refX + eyeGap, Y: refY}
	points[landmark.FaceMeshNoseTip] = landmark.Point3D{X: refX, Y: refY + eyeGap}

	half := widthPx / 2 / float64(frameWidth)
	points[landmark.FaceMeshLeftCheek] = landmark.Point3D{X: refX - half, Y: refY + eyeGap}
	points[landmark.FaceMeshRightCheek] = landmark.Point3D{X: refX + half, Y: refY + eyeGap}

	return landmark.Set{Points: points, Score: 0.95}
}

// VictoryHand returns a right hand with index and middle fingers raised and
// the others curled.
func VictoryHand() landmark.Set {
	hand := OpenPalmHand()

	// Ring finger curled
	hand.Points[landmark.RingPIP] = landmark.Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	hand.Points[landmark.RingDIP] = landmark.Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	hand.Points[landmark.RingTip] = landmark.Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	hand.Points[landmark.PinkyPIP] = landmark.Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	hand.Points[landmark.PinkyDIP] = landmark.Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	hand.Points[landmark.PinkyTip] = landmark.Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return hand
}

// ThumbsUpHand returns a right hand with the thumb extended upward while the
// other fingers are curled.
func ThumbsUpHand() landmark.Set {
	points := make([]landmark.Point3D, landmark.HandPoints)

	points[landmark.Wrist] = landmark.Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (pointing up, Y decreases going up)
	points[landmark.ThumbCMC] = landmark.Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	points[landmark.ThumbMCP] = landmark.Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	points[landmark.ThumbIP] = landmark.Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	points[landmark.ThumbTip] = landmark.Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Index finger curled (tip below the PIP joint)
	points[landmark.IndexMCP] = landmark.Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	points[landmark.IndexPIP] = landmark.Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	points[landmark.IndexDIP] = landmark.Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	points[landmark.IndexTip] = landmark.Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	// Middle finger curled
	points[landmark.MiddleMCP] = landmark.Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	points[landmark.MiddlePIP] = landmark.Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	points[landmark.MiddleDIP] = landmark.Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	points[landmark.MiddleTip] = landmark.Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	// Ring finger curled
	points[landmark.RingMCP] = landmark.Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	points[landmark.RingPIP] = landmark.Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	points[landmark.RingDIP] = landmark.Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	points[landmark.RingTip] = landmark.Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	points[landmark.PinkyMCP] = landmark.Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	points[landmark.PinkyPIP] = landmark.Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	points[landmark.PinkyDIP] = landmark.Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	points[landmark.PinkyTip] = landmark.Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return landmark.Set{Points: points, Score: 0.95, Label: "Right"}
}

// OpenPalmHand returns a right hand with all fingers extended.
func OpenPalmHand() landmark.Set {
	points := make([]landmark.Point3D, landmark.HandPoints)

	points[landmark.Wrist] = landmark.Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	points[landmark.ThumbCMC] = landmark.Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	points[landmark.ThumbMCP] = landmark.Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	points[landmark.ThumbIP] = landmark.Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	points[landmark.ThumbTip] = landmark.Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	points[landmark.IndexMCP] = landmark.Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	points[landmark.IndexPIP] = landmark.Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	points[landmark.IndexDIP] = landmark.Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	points[landmark.IndexTip] = landmark.Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	points[landmark.MiddleMCP] = landmark.Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	points[landmark.MiddlePIP] = landmark.Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	points[landmark.MiddleDIP] = landmark.Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	points[landmark.MiddleTip] = landmark.Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	points[landmark.RingMCP] = landmark.Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	points[landmark.RingPIP] = landmark.Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	points[landmark.RingDIP] = landmark.Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	points[landmark.RingTip] = landmark.Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	points[landmark.PinkyMCP] = landmark.Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	points[landmark.PinkyPIP] = landmark.Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	points[landmark.PinkyDIP] = landmark.Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	points[landmark.PinkyTip] = landmark.Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmark.Set{Points: points, Score: 0.95, Label: "Right"}
}
