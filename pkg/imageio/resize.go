package imageio

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"cubepano/internal/models"
)

// Lanczos3 is a three-lobe Lanczos windowed sinc. When downscaling,
// x/image/draw widens the kernel by the scale factor, so every source pixel
// contributes to its area of the output.
var Lanczos3 = &xdraw.Kernel{Support: 3, At: lanczos3}

func lanczos3(t float64) float64 {
	if t < 0 {
		t = -t
	}
	if t == 0 {
		return 1
	}
	if t >= 3 {
		return 0
	}
	pt := math.Pi * t
	return 3 * math.Sin(pt) * math.Sin(pt/3) / (pt * pt)
}

// Resize scales buf to width x height with the Lanczos3 filter.
// Resizing to the same size returns buf itself.
func Resize(buf *models.PixelBuffer, width, height int) *models.PixelBuffer {
	if buf.Width == width && buf.Height == height {
		return buf
	}

	src := buf.ToRGBA()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	Lanczos3.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return models.FromImage(dst)
}
