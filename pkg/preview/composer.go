// Package preview builds the low-resolution preview strip and the single
// thumbnail that a viewer shows while tiles are loading.
package preview

import (
	"fmt"
	"sync"

	"cubepano/internal/models"
	"cubepano/pkg/imageio"
)

const (
	// DefaultFaceSize is the side of each face in the preview strip
	DefaultFaceSize = 256

	// DefaultThumbSize is the side of the standalone thumbnail
	DefaultThumbSize = 240
)

// Composer collects one small thumbnail per face. Faces may be added in
// any order and from several goroutines; the strip is always assembled in
// models.PreviewOrder.
type Composer struct {
	FaceSize  int
	ThumbSize int

	mu    sync.Mutex
	faces map[models.FaceID]*models.PixelBuffer
}

// NewComposer creates a composer with the given sizes. Zero values select
// the defaults.
func NewComposer(faceSize, thumbSize int) *Composer {
	if faceSize <= 0 {
		faceSize = DefaultFaceSize
	}
	if thumbSize <= 0 {
		thumbSize = DefaultThumbSize
	}
	return &Composer{
		FaceSize:  faceSize,
		ThumbSize: thumbSize,
		faces:     make(map[models.FaceID]*models.PixelBuffer),
	}
}

// Add downsizes a full-resolution face render and keeps only the result,
// so the caller may release the render right after
func (c *Composer) Add(face models.FaceID, render *models.PixelBuffer) error {
	if !face.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidFace, int(face))
	}
	if !render.Square() {
		return fmt.Errorf("preview of %s: render is not a non-empty square", face)
	}
	small := imageio.Resize(render, c.FaceSize, c.FaceSize)
	if small == render {
		small = render.Crop(render.Bounds())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.faces == nil {
		c.faces = make(map[models.FaceID]*models.PixelBuffer)
	}
	c.faces[face] = small
	return nil
}

// Missing lists the faces not yet added, in preview order
func (c *Composer) Missing() []models.FaceID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var missing []models.FaceID
	for _, f := range models.PreviewOrder {
		if c.faces[f] == nil {
			missing = append(missing, f)
		}
	}
	return missing
}

// Strip stacks the six face thumbnails vertically in the order left, front,
// right, back, up, down. The result is FaceSize wide and 6*FaceSize high.
func (c *Composer) Strip() (*models.PixelBuffer, error) {
	if missing := c.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("preview strip incomplete, missing %v", missing)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	strip := models.NewPixelBuffer(c.FaceSize, 6*c.FaceSize)
	for i, f := range models.PreviewOrder {
		strip.Paste(c.faces[f], 0, i*c.FaceSize)
	}
	return strip, nil
}

// Thumb returns the square thumbnail, taken from the front face
func (c *Composer) Thumb() (*models.PixelBuffer, error) {
	c.mu.Lock()
	front := c.faces[models.Front]
	c.mu.Unlock()
	if front == nil {
		return nil, fmt.Errorf("thumbnail needs the front face")
	}
	return imageio.Resize(front, c.ThumbSize, c.ThumbSize), nil
}
