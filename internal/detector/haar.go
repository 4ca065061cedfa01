package detector

import (
	"fmt"
	"image"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/headtrack/internal/landmark"
)

// DefaultCascade is the frontal face cascade shipped with OpenCV.
const DefaultCascade = "data/haarcascade_frontalface_default.xml"

// HaarDetector finds faces with an OpenCV cascade classifier. Each face box
// becomes a three-point set in the landmark.FaceBox layout; the score is the
// box's share of the frame so the largest face is primary.
type HaarDetector struct {
	classifier gocv.CascadeClassifier
	mu         sync.Mutex
}

// NewHaarDetector loads the cascade at path, or DefaultCascade when empty.
func NewHaarDetector(path string) (*HaarDetector, error) {
	if path == "" {
		path = DefaultCascade
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("load cascade %s", path)
	}

	return &HaarDetector{classifier: classifier}, nil
}

// Layout returns landmark.FaceBox.
func (d *HaarDetector) Layout() landmark.Layout {
	return landmark.FaceBox
}

// Detect runs the cascade on a grayscale copy of frame.
func (d *HaarDetector) Detect(frame *gocv.Mat) (Result, error) {
	if frame == nil || frame.Empty() {
		return Result{}, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)

	d.mu.Lock()
	rects := d.classifier.DetectMultiScale(gray)
	d.mu.Unlock()

	return boxesToResult(rects, frame.Cols(), frame.Rows()), nil
}

// Close releases the classifier.
func (d *HaarDetector) Close() error {
	return d.classifier.Close()
}

func boxesToResult(rects []image.Rectangle, width, height int) Result {
	if len(rects) == 0 || width <= 0 || height <= 0 {
		return Result{}
	}

	sorted := append([]image.Rectangle(nil), rects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return area(sorted[i]) > area(sorted[j])
	})

	faces := make([]landmark.Set, 0, len(sorted))
	for _, r := range sorted {
		faces = append(faces, boxToSet(r, width, height))
	}
	return Result{Faces: faces}
}

func boxToSet(r image.Rectangle, width, height int) landmark.Set {
	w, h := float64(width), float64(height)
	cy := float64(r.Min.Y+r.Max.Y) / 2 / h

	points := make([]landmark.Point3D, landmark.BoxPoints)
	points[landmark.BoxCenter] = landmark.Point3D{X: float64(r.Min.X+r.Max.X) / 2 / w, Y: cy}
	points[landmark.BoxLeftEdge] = landmark.Point3D{X: float64(r.Min.X) / w, Y: cy}
	points[landmark.BoxRightEdge] = landmark.Point3D{X: float64(r.Max.X) / w, Y: cy}

	return landmark.Set{
		Points: points,
		Score:  float64(area(r)) / (w * h),
	}
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
