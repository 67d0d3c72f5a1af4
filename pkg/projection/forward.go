package projection

import (
	"fmt"

	"cubepano/internal/models"
)

// ForwardProjector renders cube faces from an equirectangular source
type ForwardProjector struct {
	// NumCores bounds the goroutines used per face; <= 0 means all CPUs
	NumCores int
}

// NewForwardProjector creates a projector using numCores goroutines per face
func NewForwardProjector(numCores int) *ForwardProjector {
	return &ForwardProjector{NumCores: numCores}
}

// Render projects src onto one face of side length size.
//
// Every output pixel is mapped to a face-plane (u, v), turned into a
// direction, converted to longitude/latitude and sampled from src with
// horizontal wrap. The source is only read; the face is a fresh buffer.
func (p *ForwardProjector) Render(src *models.PixelBuffer, face models.FaceID, size int) (*models.CubeFace, error) {
	dirFn, err := directionFor(face)
	if err != nil {
		return nil, err
	}
	if src.Empty() {
		return nil, fmt.Errorf("equirectangular source is empty")
	}
	if size <= 0 {
		return nil, fmt.Errorf("face size must be positive, got %d", size)
	}

	out := models.NewPixelBuffer(size, size)
	sampler := NewSampler(src, true)
	srcW, srcH := src.Width, src.Height

	// u only depends on the column, so compute it once per render
	us := make([]float64, size)
	for col := range us {
		us[col] = faceCoord(col, size, -1)
	}

	parallelRows(size, p.NumCores, func(start, end int) {
		for row := start; row < end; row++ {
			v := faceCoord(row, size, 1)
			for col := 0; col < size; col++ {
				lon, lat := LonLat(dirFn(us[col], v))
				px, py := EquirectPixel(lon, lat, srcW, srcH)
				r, g, b := sampler.Sample(px, py)
				out.SetRGB(col, row, r, g, b)
			}
		}
	})

	return &models.CubeFace{Face: face, Buffer: out}, nil
}

// RenderAll renders the six faces in processing order at one size.
// All six faces stay resident; pipelines that care about peak memory call
// Render one face at a time instead.
func (p *ForwardProjector) RenderAll(src *models.PixelBuffer, size int) (models.PanoramaSet, error) {
	set := make(models.PanoramaSet, len(models.AllFaces))
	for _, face := range models.AllFaces {
		cf, err := p.Render(src, face, size)
		if err != nil {
			return nil, fmt.Errorf("render %s face: %w", face, err)
		}
		set[face] = cf
	}
	return set, nil
}
