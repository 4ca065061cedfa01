// Package landmark defines the detector-independent landmark types consumed by
// the tracking pipeline, and the fixed index layouts of the supported models.
package landmark

import (
	"errors"
	"fmt"
	"math"
)

// ErrLayoutMismatch is returned when a landmark set does not have the points a
// layout indexes into. It means the detector's output shape changed.
var ErrLayoutMismatch = errors.New("landmark set does not match layout")

// Point3D is a landmark in normalized image coordinates: X and Y are in [0,1]
// relative to frame width and height, Z is model-specific relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set is one subject's landmarks for a single frame.
type Set struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
	Label  string    `json:"label,omitempty"` // handedness for hands
}

// Len returns the number of points in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// At returns the point at index i. Out-of-range indexes are an error rather
// than a silent wrap or zero value.
func (s *Set) At(i int) (Point3D, error) {
	if i < 0 || i >= s.Len() {
		return Point3D{}, fmt.Errorf("%w: index %d out of range for %d points", ErrLayoutMismatch, i, s.Len())
	}
	return s.Points[i], nil
}

// Mean returns the average of the points at the given indexes.
func (s *Set) Mean(indexes ...int) (Point3D, error) {
	if len(indexes) == 0 {
		return Point3D{}, fmt.Errorf("%w: no indexes", ErrLayoutMismatch)
	}

	var sum Point3D
	for _, i := range indexes {
		p, err := s.At(i)
		if err != nil {
			return Point3D{}, err
		}
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
	}

	n := float64(len(indexes))
	return Point3D{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}, nil
}

// Distance2D returns the Euclidean distance between a and b in the image plane.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Primary picks the subject to track from several detections: the highest
// score, ties broken by the earliest entry. Returns nil for an empty slice.
func Primary(sets []Set) *Set {
	if len(sets) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(sets); i++ {
		if sets[i].Score > sets[best].Score {
			best = i
		}
	}
	return &sets[best]
}
