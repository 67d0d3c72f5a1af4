// Package pipeline runs the panorama conversions end to end: loading,
// projecting, tiling, previews, metadata and the batch error policy.
package pipeline

import (
	"io"
	"os"

	"go.uber.org/zap"

	"cubepano/pkg/config"
	"cubepano/pkg/gps"
	"cubepano/pkg/imageio"
	"cubepano/pkg/preview"
)

// Params holds the processing parameters shared by every command.
type Params struct {
	// NumCores specifies how many goroutines split each per-pixel loop
	NumCores int

	// LevelWorkers bounds how many pyramid levels of one face are written at once
	LevelWorkers int

	// TileFormat and JPEGQuality control the encoding of tiles and previews
	TileFormat  imageio.Format
	JPEGQuality int

	// Archive, when set, also stores every tile in a SQLite file.
	// A relative path is resolved inside the tile directory.
	Archive string

	// WriteDirectory writes tiles as individual files in the viewer layout
	WriteDirectory bool

	// DebugLabels stamps tile names onto every tile
	DebugLabels bool

	// PreviewFaceSize and ThumbSize size preview.jpg and thumb.jpg
	PreviewFaceSize int
	ThumbSize       int

	// CubeFormat is the encoding of exported cube faces
	CubeFormat imageio.Format

	// GPS looks up capture coordinates for scene descriptions
	GPS *gps.Locator

	// Stdout receives the scene snippets
	Stdout io.Writer
}

// DefaultParams mirrors config.DefaultConfig
func DefaultParams() *Params {
	p, _ := NewParams(config.DefaultConfig(), nil)
	return p
}

// NewParams translates a loaded configuration into processing parameters
func NewParams(cfg *config.Config, log *zap.Logger) (*Params, error) {
	tileFormat, err := imageio.FormatFromExt(cfg.Tiles.Format)
	if err != nil {
		return nil, err
	}
	cubeFormat, err := imageio.FormatFromExt(cfg.Cube.Format)
	if err != nil {
		return nil, err
	}

	locator := gps.NewLocator(log)
	locator.Enabled = cfg.GPS.Enabled
	locator.ExiftoolPath = cfg.GPS.ExiftoolPath
	locator.Timeout = cfg.GPS.Timeout

	p := &Params{
		NumCores:        cfg.Processing.NumCores,
		LevelWorkers:    cfg.Processing.LevelWorkers,
		TileFormat:      tileFormat,
		JPEGQuality:     cfg.Tiles.JPEGQuality,
		Archive:         cfg.Tiles.Archive,
		WriteDirectory:  cfg.Tiles.WriteDirectory,
		DebugLabels:     cfg.Tiles.DebugLabels,
		PreviewFaceSize: cfg.Preview.FaceSize,
		ThumbSize:       cfg.Preview.ThumbSize,
		CubeFormat:      cubeFormat,
		GPS:             locator,
		Stdout:          os.Stdout,
	}
	if p.PreviewFaceSize <= 0 {
		p.PreviewFaceSize = preview.DefaultFaceSize
	}
	if p.ThumbSize <= 0 {
		p.ThumbSize = preview.DefaultThumbSize
	}
	return p, nil
}
