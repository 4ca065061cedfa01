// Package coords maps image-space pixel coordinates into engine space:
// origin at the frame center, y pointing up, both axes scaled to [-1, 1].
package coords

// NormalizeX maps a pixel column to [-1, 1], left edge to -1.
// A non-positive frame width yields 0.
func NormalizeX(pixelX, frameWidth float64) float64 {
	if !(frameWidth > 0) {
		return 0
	}
	return (pixelX/frameWidth)*2 - 1
}

// NormalizeY maps a pixel row to [-1, 1] with the axis inverted: the top edge
// maps to +1 and the bottom edge to -1. A non-positive frame height yields 0.
func NormalizeY(pixelY, frameHeight float64) float64 {
	if !(frameHeight > 0) {
		return 0
	}
	return -((pixelY/frameHeight)*2 - 1)
}

// Clamp limits v to [-1, 1].
func Clamp(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	default:
		return v
	}
}

// ToPixels converts a normalized [0,1] image coordinate to pixels.
func ToPixels(normalized float64, size int) float64 {
	return normalized * float64(size)
}
