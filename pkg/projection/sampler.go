package projection

import (
	"math"

	"cubepano/internal/models"
)

// roundingGuard absorbs floating-point error in the weighted sum so that a
// uniform neighborhood never truncates to one below its own value.
const roundingGuard = 1e-9

// Sampler reads a pixel buffer at fractional coordinates with bilinear
// interpolation. It is the only place fractional positions are turned into
// discrete pixel indices.
type Sampler struct {
	// Buffer is the source image; it is only read
	Buffer *models.PixelBuffer

	// Wrap makes the x axis periodic (equirectangular sources).
	// When false every index is clamped to the buffer (cube faces).
	Wrap bool
}

// NewSampler creates a sampler over buf
func NewSampler(buf *models.PixelBuffer, wrap bool) Sampler {
	return Sampler{Buffer: buf, Wrap: wrap}
}

// Sample returns the interpolated color at (px, py).
//
// The four neighbors (x0,y0) (x1,y0) (x0,y1) (x1,y1) with x1 = x0+1 and
// y1 = y0+1 are blended with the fractional weights wx = px-x0 and
// wy = py-y0. Rows are always clamped; columns wrap modulo the width when
// Wrap is set and are clamped otherwise.
func (s Sampler) Sample(px, py float64) (r, g, b uint8) {
	buf := s.Buffer
	w, h := buf.Width, buf.Height

	fx := math.Floor(px)
	fy := math.Floor(py)
	wx := px - fx
	wy := py - fy

	x0 := int(fx)
	y0 := int(fy)
	x1 := x0 + 1
	y1 := y0 + 1

	if s.Wrap {
		x0 = wrapIndex(x0, w)
		x1 = wrapIndex(x1, w)
	} else {
		x0 = clampIndex(x0, w)
		x1 = clampIndex(x1, w)
	}
	y0 = clampIndex(y0, h)
	y1 = clampIndex(y1, h)

	i00 := buf.Offset(x0, y0)
	i10 := buf.Offset(x1, y0)
	i01 := buf.Offset(x0, y1)
	i11 := buf.Offset(x1, y1)

	iwx := 1 - wx
	iwy := 1 - wy
	w00 := iwx * iwy
	w10 := wx * iwy
	w01 := iwx * wy
	w11 := wx * wy

	var out [3]uint8
	for c := 0; c < 3; c++ {
		v := float64(buf.Pix[i00+c])*w00 +
			float64(buf.Pix[i10+c])*w10 +
			float64(buf.Pix[i01+c])*w01 +
			float64(buf.Pix[i11+c])*w11
		out[c] = truncate8(v)
	}
	return out[0], out[1], out[2]
}

// truncate8 converts a blended channel value to 8 bits, truncating the
// fractional part.
func truncate8(v float64) uint8 {
	v += roundingGuard
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
