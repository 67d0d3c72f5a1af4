// Package tiles cuts cube-face renders into the multiresolution tile pyramid
// and hands every tile to a Sink (a directory tree, a SQLite archive or both).
package tiles

import (
	"fmt"
	"image"

	"cubepano/internal/models"
	"cubepano/pkg/imageio"
	"cubepano/pkg/multires"
)

// Tile is one cut of a level, addressed by its coordinate
type Tile struct {
	Coord  models.TileCoordinate
	Buffer *models.PixelBuffer
}

// LevelTiles holds every tile of one pyramid level
type LevelTiles struct {
	Index int // 1-based, ascending by size
	Size  int
	Tiles []Tile
}

// Slice resizes render to every level and partitions each level into
// tiles. levels must be ascending; level indices are assigned 1..len(levels).
func Slice(render *models.PixelBuffer, levels []int, tileSize int) ([]LevelTiles, error) {
	result := make([]LevelTiles, 0, len(levels))
	for i, size := range levels {
		lt, err := SliceLevel(render, i+1, size, tileSize)
		if err != nil {
			return nil, err
		}
		result = append(result, lt)
	}
	return result, nil
}

// SliceLevel produces the tiles of a single level. The render is resized
// with the Lanczos filter unless it already has the level's size.
//
// Tiles are emitted row-major with 1-based rows and columns. When size is
// not a multiple of tileSize the last row and column hold the remaining
// pixels only.
func SliceLevel(render *models.PixelBuffer, index, size, tileSize int) (LevelTiles, error) {
	if render.Empty() {
		return LevelTiles{}, fmt.Errorf("empty face render")
	}
	if !render.Square() {
		return LevelTiles{}, fmt.Errorf("face render is %dx%d, not square", render.Width, render.Height)
	}
	if size <= 0 || tileSize <= 0 {
		return LevelTiles{}, fmt.Errorf("invalid level size %d or tile size %d", size, tileSize)
	}

	level := imageio.Resize(render, size, size)

	n := multires.TilesPerAxis(size, tileSize)
	lt := LevelTiles{Index: index, Size: size, Tiles: make([]Tile, 0, n*n)}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			rect := image.Rect(col*tileSize, row*tileSize, (col+1)*tileSize, (row+1)*tileSize)
			lt.Tiles = append(lt.Tiles, Tile{
				Coord:  models.TileCoordinate{Level: index, Row: row + 1, Col: col + 1},
				Buffer: level.Crop(rect),
			})
		}
	}
	return lt, nil
}
