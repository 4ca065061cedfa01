package landmark

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func makeSet(n int) *Set {
	s := &Set{Points: make([]Point3D, n), Score: 0.9}
	for i := range s.Points {
		s.Points[i] = Point3D{X: float64(i) / float64(n), Y: 0.5, Z: 0}
	}
	return s
}

func TestSet_At(t *testing.T) {
	s := makeSet(3)

	t.Run("in range", func(t *testing.T) {
		p, err := s.At(2)
		if err != nil {
			t.Fatalf("At(2) error = %v", err)
		}
		if math.Abs(p.X-2.0/3.0) > epsilon {
			t.Errorf("At(2).X = %f, want %f", p.X, 2.0/3.0)
		}
	})

	t.Run("out of range is an error", func(t *testing.T) {
		for _, i := range []int{-1, 3, 454} {
			if _, err := s.At(i); !errors.Is(err, ErrLayoutMismatch) {
				t.Errorf("At(%d) error = %v, want ErrLayoutMismatch", i, err)
			}
		}
	})

	t.Run("nil set", func(t *testing.T) {
		var empty *Set
		if _, err := empty.At(0); !errors.Is(err, ErrLayoutMismatch) {
			t.Errorf("nil.At(0) error = %v, want ErrLayoutMismatch", err)
		}
	})
}

func TestSet_Mean(t *testing.T) {
	s := &Set{Points: []Point3D{
		{X: 0.2, Y: 0.4, Z: 0.1},
		{X: 0.6, Y: 0.8, Z: 0.3},
	}}

	got, err := s.Mean(0, 1)
	if err != nil {
		t.Fatalf("Mean() error = %v", err)
	}

	want := Point3D{X: 0.4, Y: 0.6, Z: 0.2}
	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon || math.Abs(got.Z-want.Z) > epsilon {
		t.Errorf("Mean() = %+v, want %+v", got, want)
	}

	if _, err := s.Mean(); !errors.Is(err, ErrLayoutMismatch) {
		t.Errorf("Mean() with no indexes error = %v, want ErrLayoutMismatch", err)
	}
	if _, err := s.Mean(0, 5); !errors.Is(err, ErrLayoutMismatch) {
		t.Errorf("Mean(0, 5) error = %v, want ErrLayoutMismatch", err)
	}
}

func TestPrimary(t *testing.T) {
	if Primary(nil) != nil {
		t.Error("Primary(nil) should be nil")
	}

	sets := []Set{{Score: 0.4}, {Score: 0.9}, {Score: 0.9}}
	got := Primary(sets)
	if got != &sets[1] {
		t.Errorf("Primary() picked score %f, want the first 0.9 entry", got.Score)
	}
}

func TestLayout_Validate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		points  int
		wantErr bool
	}{
		{"face mesh refined", FaceMesh, FaceMeshRefinedPoints, false},
		{"face mesh oversized", FaceMesh, FaceMeshRefinedPoints + 1, true},
		{"face mesh minimum", FaceMesh, FaceMeshPoints, false},
		{"face mesh truncated", FaceMesh, 300, true},
		{"keypoints", FaceKeypoints, KeypointsPerFace, false},
		{"keypoints short", FaceKeypoints, 4, true},
		{"face mesh as keypoints", FaceKeypoints, FaceMeshPoints, true},
		{"box", FaceBox, BoxPoints, false},
		{"box empty", FaceBox, 0, true},
		{"face mesh as box", FaceBox, FaceMeshPoints, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate(makeSet(tt.points))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrLayoutMismatch) {
				t.Errorf("Validate() error = %v, want ErrLayoutMismatch", err)
			}
		})
	}
}

func TestLayout_Compatible(t *testing.T) {
	tests := []struct {
		name     string
		layout   Layout
		detected Layout
		wantErr  bool
	}{
		{"same layout", FaceMesh, FaceMesh, false},
		{"same model", FaceMeshNose, FaceMesh, false},
		{"keypoints over mesh", FaceKeypoints, FaceMesh, true},
		{"box over mesh", FaceBox, FaceMesh, true},
		{"mesh over box", FaceMesh, FaceBox, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Compatible(tt.detected)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compatible() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrLayoutMismatch) {
				t.Errorf("Compatible() error = %v, want ErrLayoutMismatch", err)
			}
		})
	}
}

func TestLayout_ReferenceAndWidth(t *testing.T) {
	s := makeSet(FaceMeshPoints)
	s.Points[FaceMeshLeftEyeInner] = Point3D{X: 0.45, Y: 0.5}
	s.Points[FaceMeshRightEyeInner] = Point3D{X: 0.55, Y: 0.5}
	s.Points[FaceMeshLeftCheek] = Point3D{X: 0.6, Y: 0.55}
	s.Points[FaceMeshRightCheek] = Point3D{X: 0.4, Y: 0.55}

	ref, err := FaceMesh.ReferencePoint(s)
	if err != nil {
		t.Fatalf("ReferencePoint() error = %v", err)
	}
	if math.Abs(ref.X-0.5) > epsilon || math.Abs(ref.Y-0.5) > epsilon {
		t.Errorf("ReferencePoint() = %+v, want (0.5, 0.5)", ref)
	}

	w, err := FaceMesh.Width(s)
	if err != nil {
		t.Fatalf("Width() error = %v", err)
	}
	if math.Abs(w-0.2) > epsilon {
		t.Errorf("Width() = %f, want 0.2 regardless of point order", w)
	}
}

func TestLayoutByName(t *testing.T) {
	for _, name := range []string{"face_mesh", "FACE_MESH_NOSE", "face_keypoints", "face_box"} {
		if _, err := LayoutByName(name); err != nil {
			t.Errorf("LayoutByName(%q) error = %v", name, err)
		}
	}
	if _, err := LayoutByName("pose"); err == nil {
		t.Error("LayoutByName(\"pose\") should fail")
	}
}
