package capture

import (
	"image"
	"time"

	"gocv.io/x/gocv"
)

// ScaleFactors are the selectable processing scales, cycled from the tray
// and the HTTP API. Smaller frames trade accuracy for detector latency.
var ScaleFactors = []float64{1.0, 0.66, 0.33}

// ScaleFactor returns the factor at index i, wrapping around.
func ScaleFactor(i int) float64 {
	n := len(ScaleFactors)
	return ScaleFactors[((i%n)+n)%n]
}

// Frame is one captured image on its way to the detector.
type Frame struct {
	Mat        *gocv.Mat
	Seq        uint64
	CapturedAt time.Time
	Scale      float64
}

// Size returns the frame's width and height in pixels.
func (f Frame) Size() (int, int) {
	if f.Mat == nil {
		return 0, 0
	}
	return f.Mat.Cols(), f.Mat.Rows()
}

// Close releases the frame's Mat.
func (f Frame) Close() {
	if f.Mat != nil {
		f.Mat.Close()
	}
}

// Rescale resizes src in place by factor. Factors outside (0, 1) leave the
// frame untouched.
func Rescale(src *gocv.Mat, factor float64) {
	if src == nil || src.Empty() || factor <= 0 || factor >= 1 {
		return
	}

	dst := gocv.NewMat()
	gocv.Resize(*src, &dst, image.Point{}, factor, factor, gocv.InterpolationLinear)
	src.Close()
	*src = dst
}
