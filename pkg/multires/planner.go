// Package multires plans the cube-face sizes of a multiresolution tile pyramid.
package multires

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// TileSize is the side length of every tile in pixels
	TileSize = 512

	// LevelStep is the granularity all level sizes are rounded to
	LevelStep = 128
)

// ErrTooSmall means the source is too narrow to produce any level larger
// than one tile (an equirectangular width below 1810 px)
var ErrTooSmall = errors.New("panorama too small for multires tiles")

// MaxLevel is the nearest multiple of LevelStep to the ideal cube-face size
// width / π. Halves round to even.
func MaxLevel(width int) int {
	return int(math.RoundToEven(float64(width)/math.Pi/LevelStep)) * LevelStep
}

// Plan returns the ascending list of face sizes to render for an
// equirectangular source of the given width.
//
// Starting from MaxLevel, each smaller level halves the previous one and
// floors it to a multiple of LevelStep. Only sizes strictly larger than
// TileSize are kept. The list is empty when MaxLevel itself is not larger
// than one tile.
func Plan(width int) []int {
	var levels []int
	for current := MaxLevel(width); current > TileSize; current = (current / (2 * LevelStep)) * LevelStep {
		levels = append(levels, current)
	}
	sort.Ints(levels)
	return levels
}

// PlanChecked is Plan returning ErrTooSmall instead of an empty list
func PlanChecked(width int) ([]int, error) {
	levels := Plan(width)
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: width %d gives max level %d (need > %d)", ErrTooSmall, width, MaxLevel(width), TileSize)
	}
	return levels, nil
}

// Descriptor formats the viewer multires attribute: the tile size followed
// by every level size ascending, e.g. "512,768,1664,3328,6656".
func Descriptor(levels []int) string {
	parts := make([]string, 0, len(levels)+1)
	parts = append(parts, strconv.Itoa(TileSize))
	for _, l := range levels {
		parts = append(parts, strconv.Itoa(l))
	}
	return strings.Join(parts, ",")
}

// TilesPerAxis is the number of tile rows (and columns) of a level.
// A trailing partial tile counts as a tile rather than being floored away,
// so a 768 px level yields 2x2 tiles and no pixels are dropped.
func TilesPerAxis(size, tileSize int) int {
	if size <= 0 || tileSize <= 0 {
		return 0
	}
	return (size + tileSize - 1) / tileSize
}
