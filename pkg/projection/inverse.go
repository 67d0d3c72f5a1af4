package projection

import (
	"fmt"

	"cubepano/internal/models"
)

// InverseProjector reconstructs an equirectangular image from six cube faces
type InverseProjector struct {
	// NumCores bounds the goroutines used; <= 0 means all CPUs
	NumCores int
}

// NewInverseProjector creates a projector using numCores goroutines
func NewInverseProjector(numCores int) *InverseProjector {
	return &InverseProjector{NumCores: numCores}
}

// Reconstruct builds a width x height equirectangular buffer from set.
//
// Each output pixel is turned into a longitude/latitude, then a unit
// direction; the dominant axis picks the face and the face-plane (u, v) is
// sampled from that face with clamping at the edges. The set is validated
// first and rejected as a whole if it is incomplete or inconsistent.
func (p *InverseProjector) Reconstruct(set models.PanoramaSet, width, height int) (*models.PixelBuffer, error) {
	faceSize, err := ValidateSet(set)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("output size must be positive, got %dx%d", width, height)
	}

	var samplers [6]Sampler
	for _, face := range models.AllFaces {
		samplers[face] = NewSampler(set[face].Buffer, false)
	}

	out := models.NewPixelBuffer(width, height)
	parallelRows(height, p.NumCores, func(start, end int) {
		for row := start; row < end; row++ {
			for col := 0; col < width; col++ {
				lon, lat := EquirectLonLat(col, row, width, height)
				face, u, v := FaceUV(LonLatDirection(lon, lat))
				px, py := FacePixel(u, v, faceSize)
				r, g, b := samplers[face].Sample(px, py)
				out.SetRGB(col, row, r, g, b)
			}
		}
	})

	return out, nil
}
