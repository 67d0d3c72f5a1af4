package tiles

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"cubepano/internal/models"
)

// Labeler stamps the tile name and a red border onto a tile, making seams
// and level indices visible when inspecting a pyramid in a viewer
type Labeler struct {
	font *truetype.Font
	size float64
}

// NewLabeler parses the embedded Go Regular font
func NewLabeler() (*Labeler, error) {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	return &Labeler{font: f, size: 16}, nil
}

// Label returns a labelled copy of buf
func (l *Labeler) Label(face models.FaceID, coord models.TileCoordinate, buf *models.PixelBuffer) (*models.PixelBuffer, error) {
	im := buf.ToRGBA()
	w, h := buf.Width, buf.Height

	col := color.RGBA{255, 0, 0, 255}
	for i := 0; i < w; i++ {
		im.Set(i, 0, col)
		im.Set(i, h-1, col)
	}
	for i := 0; i < h; i++ {
		im.Set(0, i, col)
		im.Set(w-1, i, col)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(l.font)
	ctx.SetFontSize(l.size)
	ctx.SetClip(im.Bounds())
	ctx.SetDst(im)
	ctx.SetSrc(image.Black)

	lines := []string{
		coord.Name(face),
		fmt.Sprintf("%s level %d", face, coord.Level),
		fmt.Sprintf("row %d col %d", coord.Row, coord.Col),
	}
	for i, s := range lines {
		if _, err := ctx.DrawString(s, freetype.Pt(30, 30+i*20)); err != nil {
			return nil, fmt.Errorf("draw label: %w", err)
		}
	}
	return models.FromImage(im), nil
}
