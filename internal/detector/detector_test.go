package detector

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/headtrack/internal/landmark"
)

const epsilon = 1e-9

func TestDecodeResponse(t *testing.T) {
	t.Run("faces and hands", func(t *testing.T) {
		line := []byte(`{"faces":[{"points":[{"x":0.1,"y":0.2,"z":-0.01}],"score":0.9}],` +
			`"hands":[{"points":[{"x":0.5,"y":0.6,"z":0}],"handedness":"Left","score":0.8}]}` + "\n")

		got, err := decodeResponse(line)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}

		want := Result{
			Faces: []landmark.Set{{Points: []landmark.Point3D{{X: 0.1, Y: 0.2, Z: -0.01}}, Score: 0.9}},
			Hands: []landmark.Set{{Points: []landmark.Point3D{{X: 0.5, Y: 0.6}}, Score: 0.8, Label: "Left"}},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("decodeResponse() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no subjects", func(t *testing.T) {
		got, err := decodeResponse([]byte(`{"faces":[],"hands":[]}`))
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if got.PrimaryFace() != nil || got.PrimaryHand() != nil {
			t.Errorf("expected empty result, got %+v", got)
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"error":"model not found"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`not json`)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestBoxesToResult(t *testing.T) {
	small := image.Rect(100, 100, 150, 150)
	large := image.Rect(300, 200, 500, 400)

	result := boxesToResult([]image.Rectangle{small, large}, 1000, 800)
	if len(result.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(result.Faces))
	}

	primary := result.PrimaryFace()
	if err := landmark.FaceBox.Validate(primary); err != nil {
		t.Fatalf("primary face does not fit the box layout: %v", err)
	}

	center := primary.Points[landmark.BoxCenter]
	if math.Abs(center.X-0.4) > epsilon || math.Abs(center.Y-0.375) > epsilon {
		t.Errorf("center = %+v, want (0.4, 0.375)", center)
	}

	width, err := landmark.FaceBox.Width(primary)
	if err != nil {
		t.Fatalf("Width() error = %v", err)
	}
	if math.Abs(width-0.2) > epsilon {
		t.Errorf("width = %f, want 0.2", width)
	}

	if math.Abs(primary.Score-0.05) > epsilon {
		t.Errorf("score = %f, want 0.05", primary.Score)
	}
}

func TestBoxesToResult_Empty(t *testing.T) {
	if r := boxesToResult(nil, 640, 480); r.Faces != nil {
		t.Errorf("expected no faces, got %v", r.Faces)
	}
	if r := boxesToResult([]image.Rectangle{image.Rect(0, 0, 10, 10)}, 0, 0); r.Faces != nil {
		t.Errorf("expected no faces for empty frame, got %v", r.Faces)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty result by default", func(t *testing.T) {
		mock := NewMockDetector()

		result, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result.Faces != nil || result.Hands != nil {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("returns queued results before the fixed one", func(t *testing.T) {
		mock := NewMockDetector()
		face := FaceMeshFixture(0.5, 0.5, 200, 1920)
		mock.SetResult(Result{Faces: []landmark.Set{face}})
		mock.Enqueue(Result{}, Result{Hands: []landmark.Set{OpenPalmHand()}})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if first.PrimaryFace() != nil {
			t.Error("first result should be empty")
		}
		if second.PrimaryHand() == nil {
			t.Error("second result should carry a hand")
		}
		if third.PrimaryFace() == nil {
			t.Error("third result should fall back to the fixed face")
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		_, err := mock.Detect(nil)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
	})

	t.Run("layout", func(t *testing.T) {
		mock := NewMockDetector()
		if mock.Layout().Name != landmark.FaceMesh.Name {
			t.Errorf("default layout = %s", mock.Layout().Name)
		}
		mock.SetLayout(landmark.FaceKeypoints)
		if mock.Layout().Name != landmark.FaceKeypoints.Name {
			t.Errorf("layout = %s after SetLayout", mock.Layout().Name)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
		var _ Detector = (*HaarDetector)(nil)
	})
}

func TestNew(t *testing.T) {
	d, err := New(Config{Kind: KindMock})
	if err != nil {
		t.Fatalf("New(mock) error = %v", err)
	}
	if _, ok := d.(*MockDetector); !ok {
		t.Errorf("New(mock) returned %T", d)
	}

	if _, err := New(Config{Kind: "yolo"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("New(yolo) error = %v, want ErrUnknownKind", err)
	}
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{KindMediaPipe, landmark.FaceMesh.Name},
		{KindMock, landmark.FaceMesh.Name},
		{KindHaar, landmark.FaceBox.Name},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			l, err := LayoutFor(tt.kind)
			if err != nil {
				t.Fatalf("LayoutFor(%q) error = %v", tt.kind, err)
			}
			if l.Name != tt.want {
				t.Errorf("LayoutFor(%q) = %s, want %s", tt.kind, l.Name, tt.want)
			}
		})
	}

	if _, err := LayoutFor("yolo"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("LayoutFor(yolo) error = %v, want ErrUnknownKind", err)
	}
}

func TestFaceMeshFixture(t *testing.T) {
	face := FaceMeshFixture(0.5, 0.4, 200, 1920)

	if err := landmark.FaceMesh.Validate(&face); err != nil {
		t.Fatalf("fixture does not fit the face mesh layout: %v", err)
	}

	ref, err := landmark.FaceMesh.ReferencePoint(&face)
	if err != nil {
		t.Fatalf("ReferencePoint() error = %v", err)
	}
	if math.Abs(ref.X-0.5) > epsilon || math.Abs(ref.Y-0.4) > epsilon {
		t.Errorf("reference = %+v, want (0.5, 0.4)", ref)
	}

	width, _ := landmark.FaceMesh.Width(&face)
	if math.Abs(width*1920-200) > 1e-6 {
		t.Errorf("width = %f px, want 200", width*1920)
	}
}

func TestHandFixtures(t *testing.T) {
	hands := map[string]landmark.Set{
		"victory":   VictoryHand(),
		"thumbs up": ThumbsUpHand(),
		"open palm": OpenPalmHand(),
	}

	for name, hand := range hands {
		t.Run(name, func(t *testing.T) {
			if hand.Len() != landmark.HandPoints {
				t.Errorf("expected %d points, got %d", landmark.HandPoints, hand.Len())
			}
			if hand.Label != "Right" {
				t.Errorf("expected Right hand, got %q", hand.Label)
			}
			for i, p := range hand.Points {
				if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
					t.Errorf("point %d out of normalized range: %+v", i, p)
				}
			}
		})
	}

	// The victory fixture must not alias the open palm's points.
	v := VictoryHand()
	o := OpenPalmHand()
	if v.Points[landmark.RingTip] == o.Points[landmark.RingTip] {
		t.Error("victory ring finger should be curled")
	}
}
