// Package detector adapts landmark models to the detector-independent
// landmark.Set consumed by the tracking pipeline.
package detector

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/headtrack/internal/landmark"
)

// ErrUnknownKind is returned by New for an unsupported detector kind.
var ErrUnknownKind = errors.New("unknown detector kind")

// Detector kinds.
const (
	KindMediaPipe = "mediapipe"
	KindHaar      = "haar"
	KindMock      = "mock"
)

// Result holds every subject found in one frame.
type Result struct {
	Faces []landmark.Set `json:"faces"`
	Hands []landmark.Set `json:"hands"`
}

// PrimaryFace returns the face to track, or nil if none was found.
func (r Result) PrimaryFace() *landmark.Set {
	return landmark.Primary(r.Faces)
}

// PrimaryHand returns the highest scoring hand, or nil.
func (r Result) PrimaryHand() *landmark.Set {
	return landmark.Primary(r.Hands)
}

// Detector finds landmarks in a video frame.
type Detector interface {
	// Detect analyzes a frame. A frame without subjects is not an error;
	// the result is simply empty.
	Detect(frame *gocv.Mat) (Result, error)

	// Layout is the index scheme of the face sets this detector returns.
	Layout() landmark.Layout

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds detector options.
type Config struct {
	Kind string `json:"kind"`

	// MaxFaces is the maximum number of faces to report.
	MaxFaces int `json:"max_faces"`
	// Hands enables hand landmarks alongside faces.
	Hands    bool `json:"hands"`
	MaxHands int  `json:"max_hands"`

	// MinConfidence is the minimum detection confidence (0.0-1.0).
	MinConfidence float64 `json:"min_confidence"`
	// MinTrackingConf is the minimum tracking confidence (0.0-1.0).
	MinTrackingConf float64 `json:"min_tracking_confidence"`

	// Script and Python locate the MediaPipe service. Empty values are
	// searched for next to the binary.
	Script string `json:"script,omitempty"`
	Python string `json:"python,omitempty"`

	// CascadePath is the Haar cascade XML for the haar kind.
	CascadePath string `json:"cascade_path,omitempty"`
}

// DefaultConfig returns a Config for a single face through MediaPipe.
func DefaultConfig() Config {
	return Config{
		Kind:            KindMediaPipe,
		MaxFaces:        1,
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.1,
	}
}

// New builds the detector named by cfg.Kind.
func New(cfg Config) (Detector, error) {
	switch cfg.Kind {
	case KindMediaPipe, "":
		return NewMediaPipeDetector(cfg)
	case KindHaar:
		return NewHaarDetector(cfg.CascadePath)
	case KindMock:
		return NewMockDetector(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
}

// LayoutFor returns the layout of the face sets a detector kind produces,
// without starting the detector.
func LayoutFor(kind string) (landmark.Layout, error) {
	switch kind {
	case KindMediaPipe, KindMock, "":
		return landmark.FaceMesh, nil
	case KindHaar:
		return landmark.FaceBox, nil
	}
	return landmark.Layout{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
