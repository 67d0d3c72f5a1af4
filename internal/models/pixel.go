package models

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// PixelBuffer is a rectangular grid of 8-bit RGB triples.
// The origin is the top-left corner and pixels are stored row-major,
// three bytes per pixel with no padding between rows.
type PixelBuffer struct {
	// Width and Height are the dimensions of the buffer in pixels
	Width  int
	Height int

	// Pix holds the RGB samples, len(Pix) == 3*Width*Height
	Pix []uint8
}

// NewPixelBuffer allocates a zeroed (black) buffer of the given size
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 3*width*height),
	}
}

// Offset returns the index of the red sample of pixel (x, y) in Pix
func (b *PixelBuffer) Offset(x, y int) int {
	return 3 * (y*b.Width + x)
}

// RGB returns the color of pixel (x, y)
func (b *PixelBuffer) RGB(x, y int) (r, g, bl uint8) {
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// SetRGB sets the color of pixel (x, y)
func (b *PixelBuffer) SetRGB(x, y int, r, g, bl uint8) {
	i := b.Offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
}

// Fill paints every pixel with one color
func (b *PixelBuffer) Fill(r, g, bl uint8) {
	for i := 0; i+2 < len(b.Pix); i += 3 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
	}
}

// Empty reports whether the buffer has no pixels
func (b *PixelBuffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// Square reports whether the buffer is a non-empty square
func (b *PixelBuffer) Square() bool {
	return !b.Empty() && b.Width == b.Height
}

// Crop copies the pixels inside r into a new buffer.
// r is intersected with the buffer bounds first.
func (b *PixelBuffer) Crop(r image.Rectangle) *PixelBuffer {
	r = r.Intersect(image.Rect(0, 0, b.Width, b.Height))
	out := NewPixelBuffer(r.Dx(), r.Dy())
	rowLen := 3 * r.Dx()
	for y := 0; y < r.Dy(); y++ {
		src := b.Offset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*rowLen:(y+1)*rowLen], b.Pix[src:src+rowLen])
	}
	return out
}

// Paste copies src into b with its top-left corner at (x, y).
// Pixels falling outside b are dropped.
func (b *PixelBuffer) Paste(src *PixelBuffer, x, y int) {
	dst := image.Rect(x, y, x+src.Width, y+src.Height).Intersect(image.Rect(0, 0, b.Width, b.Height))
	rowLen := 3 * dst.Dx()
	for row := dst.Min.Y; row < dst.Max.Y; row++ {
		s := src.Offset(dst.Min.X-x, row-y)
		d := b.Offset(dst.Min.X, row)
		copy(b.Pix[d:d+rowLen], src.Pix[s:s+rowLen])
	}
}

// Equal reports whether two buffers have the same size and pixels
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer
func (b *PixelBuffer) String() string {
	return fmt.Sprintf("PixelBuffer(%dx%d)", b.Width, b.Height)
}

// ToRGBA converts the buffer into an opaque *image.RGBA
func (b *PixelBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, j := 0, 0; i+2 < len(b.Pix); i, j = i+3, j+4 {
		img.Pix[j] = b.Pix[i]
		img.Pix[j+1] = b.Pix[i+1]
		img.Pix[j+2] = b.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// FromImage converts any image into an RGB buffer. Alpha is discarded.
func FromImage(img image.Image) *PixelBuffer {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*rgba.Rect.Dx() {
		bounds := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	out := NewPixelBuffer(rgba.Rect.Dx(), rgba.Rect.Dy())
	for i, j := 0, 0; i+2 < len(out.Pix); i, j = i+3, j+4 {
		out.Pix[i] = rgba.Pix[j]
		out.Pix[i+1] = rgba.Pix[j+1]
		out.Pix[i+2] = rgba.Pix[j+2]
	}
	return out
}

// ColorModel implements image.Image
func (b *PixelBuffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image
func (b *PixelBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// At implements image.Image
func (b *PixelBuffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return color.RGBA{}
	}
	r, g, bl := b.RGB(x, y)
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}
}
