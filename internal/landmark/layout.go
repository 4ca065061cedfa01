package landmark

import (
	"fmt"
	"strings"
)

// MediaPipe face landmarker indexes used for tracking.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	FaceMeshNoseTip       = 1
	FaceMeshLeftEyeInner  = 133
	FaceMeshRightEyeInner = 362
	FaceMeshLeftCheek     = 234
	FaceMeshRightCheek    = 454
	FaceMeshPoints        = 468
	// FaceMeshRefinedPoints adds the ten iris points of refine_landmarks.
	FaceMeshRefinedPoints = 478
)

// Short-range face detector keypoints.
const (
	KeypointLeftEye  = 0
	KeypointRightEye = 1
	KeypointNoseTip  = 2
	KeypointMouth    = 3
	KeypointRightEar = 4
	KeypointLeftEar  = 5
	KeypointsPerFace = 6
)

// Points synthesized from a bounding box by box detectors.
const (
	BoxCenter    = 0
	BoxLeftEdge  = 1
	BoxRightEdge = 2
	BoxPoints    = 3
)

// Hand landmark indexes following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist      = 0
	ThumbCMC   = 1
	ThumbMCP   = 2
	ThumbIP    = 3
	ThumbTip   = 4
	IndexMCP   = 5
	IndexPIP   = 6
	IndexDIP   = 7
	IndexTip   = 8
	MiddleMCP  = 9
	MiddlePIP  = 10
	MiddleDIP  = 11
	MiddleTip  = 12
	RingMCP    = 13
	RingPIP    = 14
	RingDIP    = 15
	RingTip    = 16
	PinkyMCP   = 17
	PinkyPIP   = 18
	PinkyDIP   = 19
	PinkyTip   = 20
	HandPoints = 21
)

// Layout is the fixed index scheme of one detector model: which points form
// the reference point and which pair measures face width. Layouts of the same
// Model index the same point set and are interchangeable.
type Layout struct {
	Name       string
	Model      string
	MinPoints  int
	MaxPoints  int
	Reference  []int
	WidthLeft  int
	WidthRight int
}

// Detector models.
const (
	ModelFaceMesh      = "face_mesh"
	ModelFaceKeypoints = "face_keypoints"
	ModelFaceBox       = "face_box"
)

// Built-in layouts.
var (
	FaceMesh = Layout{
		Name:       "face_mesh",
		Model:      ModelFaceMesh,
		MinPoints:  FaceMeshPoints,
		MaxPoints:  FaceMeshRefinedPoints,
		Reference:  []int{FaceMeshLeftEyeInner, FaceMeshRightEyeInner},
		WidthLeft:  FaceMeshLeftCheek,
		WidthRight: FaceMeshRightCheek,
	}

	FaceMeshNose = Layout{
		Name:       "face_mesh_nose",
		Model:      ModelFaceMesh,
		MinPoints:  FaceMeshPoints,
		MaxPoints:  FaceMeshRefinedPoints,
		Reference:  []int{FaceMeshNoseTip},
		WidthLeft:  FaceMeshLeftCheek,
		WidthRight: FaceMeshRightCheek,
	}

	FaceKeypoints = Layout{
		Name:       "face_keypoints",
		Model:      ModelFaceKeypoints,
		MinPoints:  KeypointsPerFace,
		MaxPoints:  KeypointsPerFace,
		Reference:  []int{KeypointLeftEye, KeypointRightEye},
		WidthLeft:  KeypointLeftEar,
		WidthRight: KeypointRightEar,
	}

	FaceBox = Layout{
		Name:       "face_box",
		Model:      ModelFaceBox,
		MinPoints:  BoxPoints,
		MaxPoints:  BoxPoints,
		Reference:  []int{BoxCenter},
		WidthLeft:  BoxLeftEdge,
		WidthRight: BoxRightEdge,
	}
)

var layouts = map[string]Layout{
	FaceMesh.Name:      FaceMesh,
	FaceMeshNose.Name:  FaceMeshNose,
	FaceKeypoints.Name: FaceKeypoints,
	FaceBox.Name:       FaceBox,
}

// LayoutByName returns a built-in layout.
func LayoutByName(name string) (Layout, error) {
	l, ok := layouts[strings.ToLower(name)]
	if !ok {
		return Layout{}, fmt.Errorf("unknown landmark layout %q", name)
	}
	return l, nil
}

// Validate checks that the set has every point the layout indexes and no
// more points than the layout's model produces. A set from a larger model
// would otherwise be read at the wrong indexes without complaint.
func (l Layout) Validate(s *Set) error {
	need := l.MinPoints
	for _, i := range l.indexes() {
		if i+1 > need {
			need = i + 1
		}
	}
	if s.Len() < need {
		return fmt.Errorf("%w: layout %s needs %d points, got %d", ErrLayoutMismatch, l.Name, need, s.Len())
	}
	if l.MaxPoints > 0 && s.Len() > l.MaxPoints {
		return fmt.Errorf("%w: layout %s takes at most %d points, got %d", ErrLayoutMismatch, l.Name, l.MaxPoints, s.Len())
	}
	return nil
}

// Compatible reports an error unless sets produced for other can be read
// with l, that is both layouts index the same model.
func (l Layout) Compatible(other Layout) error {
	if l.Model != other.Model {
		return fmt.Errorf("%w: layout %s (%s) cannot read %s sets from layout %s",
			ErrLayoutMismatch, l.Name, l.Model, other.Model, other.Name)
	}
	return nil
}

// ReferencePoint returns the mean of the layout's reference points.
func (l Layout) ReferencePoint(s *Set) (Point3D, error) {
	return s.Mean(l.Reference...)
}

// Width returns the horizontal distance between the layout's width points, in
// normalized units.
func (l Layout) Width(s *Set) (float64, error) {
	left, err := s.At(l.WidthLeft)
	if err != nil {
		return 0, err
	}
	right, err := s.At(l.WidthRight)
	if err != nil {
		return 0, err
	}
	w := left.X - right.X
	if w < 0 {
		w = -w
	}
	return w, nil
}

func (l Layout) indexes() []int {
	idx := make([]int, 0, len(l.Reference)+2)
	idx = append(idx, l.Reference...)
	return append(idx, l.WidthLeft, l.WidthRight)
}
