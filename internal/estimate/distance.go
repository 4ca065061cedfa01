// Package estimate converts an observed face width into an approximate
// camera distance using a pinhole-camera heuristic.
package estimate

import "math"

// Pinhole defaults.
const (
	// DefaultFocalLengthMM is the assumed webcam focal length.
	DefaultFocalLengthMM = 615.0
	// DefaultFaceWidthCM is the average adult face width.
	DefaultFaceWidthCM = 14.0
	// pixelScale converts pixels to sensor millimetres. Empirically tuned,
	// not a calibration: only relative distance is meaningful.
	pixelScale = 0.1

	// depthOffsetCM and depthDivisor rescale distance into a roughly [-1,1] z.
	depthOffsetCM = 30.0
	depthDivisor  = 100.0
)

// Distance estimates the camera distance in centimetres of a face that is
// faceWidthPx pixels wide. Widths below 1 (including NaN) are clamped to 1.
func Distance(faceWidthPx, focalLengthMM, realFaceWidthCM float64) float64 {
	if !(faceWidthPx >= 1) {
		faceWidthPx = 1
	}
	return (realFaceWidthCM * focalLengthMM) / (faceWidthPx * pixelScale)
}

// DepthZ rescales a distance in centimetres to the pipeline's z coordinate.
func DepthZ(distanceCM float64) float64 {
	return (distanceCM - depthOffsetCM) / depthDivisor
}

// Estimator holds the camera parameters used by Distance.
type Estimator struct {
	FocalLengthMM float64
	FaceWidthCM   float64
}

// NewEstimator returns an Estimator. Non-positive or non-finite parameters
// fall back to the defaults.
func NewEstimator(focalLengthMM, faceWidthCM float64) Estimator {
	if !validParam(focalLengthMM) {
		focalLengthMM = DefaultFocalLengthMM
	}
	if !validParam(faceWidthCM) {
		faceWidthCM = DefaultFaceWidthCM
	}
	return Estimator{FocalLengthMM: focalLengthMM, FaceWidthCM: faceWidthCM}
}

// DefaultEstimator returns an Estimator with the default camera parameters.
func DefaultEstimator() Estimator {
	return Estimator{FocalLengthMM: DefaultFocalLengthMM, FaceWidthCM: DefaultFaceWidthCM}
}

// Estimate returns the distance in centimetres for a face width in pixels.
func (e Estimator) Estimate(faceWidthPx float64) float64 {
	return Distance(faceWidthPx, e.FocalLengthMM, e.FaceWidthCM)
}

func validParam(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
