package projection

import "math"

// CubeFaceSize is the face side length matching an equirectangular width,
// round(width / π) with halves rounded to even.
func CubeFaceSize(width int) int {
	return int(math.RoundToEven(float64(width) / math.Pi))
}

// EquirectSize is the equirectangular size matching a face side length:
// width = round(size·π), height = round(width / 2), halves rounded to even.
func EquirectSize(faceSize int) (width, height int) {
	width = int(math.RoundToEven(float64(faceSize) * math.Pi))
	height = int(math.RoundToEven(float64(width) / 2))
	return width, height
}
