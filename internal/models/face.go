package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFace is returned for a face identifier outside the six cube faces
var ErrInvalidFace = errors.New("invalid cube face")

// FaceID identifies one of the six cube faces.
// The coordinate system is right-handed: +Z is front, +X is right, +Y is up.
type FaceID int

const (
	Front FaceID = iota
	Back
	Right
	Left
	Up
	Down
)

// AllFaces lists the faces in processing order (f, b, r, l, u, d)
var AllFaces = [6]FaceID{Front, Back, Right, Left, Up, Down}

// PreviewOrder is the face order of the preview strip (l, f, r, b, u, d)
var PreviewOrder = [6]FaceID{Left, Front, Right, Back, Up, Down}

var faceLetters = [6]string{"f", "b", "r", "l", "u", "d"}

var faceNames = [6]string{"front", "back", "right", "left", "up", "down"}

// Valid reports whether f is one of the six faces
func (f FaceID) Valid() bool {
	return f >= Front && f <= Down
}

// Letter returns the single-letter key used in file and tile names
func (f FaceID) Letter() string {
	if !f.Valid() {
		return "?"
	}
	return faceLetters[f]
}

// String implements fmt.Stringer
func (f FaceID) String() string {
	if !f.Valid() {
		return fmt.Sprintf("FaceID(%d)", int(f))
	}
	return faceNames[f]
}

// ParseFace accepts a face letter ("f") or name ("front"), case-insensitively
func ParseFace(s string) (FaceID, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, f := range AllFaces {
		if key == faceLetters[f] || key == faceNames[f] {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFace, s)
}

// CubeFace is a square pixel buffer tagged with the face it depicts
type CubeFace struct {
	// Face identifies which side of the cube this buffer is
	Face FaceID

	// Buffer holds the pixels, Buffer.Width == Buffer.Height
	Buffer *PixelBuffer
}

// Size returns the side length of the face
func (c *CubeFace) Size() int {
	if c == nil || c.Buffer == nil {
		return 0
	}
	return c.Buffer.Width
}

// PanoramaSet maps each face to its buffer.
// A complete set has exactly six entries of one shared side length.
type PanoramaSet map[FaceID]*CubeFace

// Missing returns the faces absent from the set, in processing order
func (s PanoramaSet) Missing() []FaceID {
	var missing []FaceID
	for _, f := range AllFaces {
		if c, ok := s[f]; !ok || c == nil || c.Buffer == nil {
			missing = append(missing, f)
		}
	}
	return missing
}

// TileCoordinate identifies one tile of a resized face.
// Level, Row and Col are all 1-based.
type TileCoordinate struct {
	Level int
	Row   int
	Col   int
}

// Name returns the tile file stem, e.g. l1_f_01_02
func (t TileCoordinate) Name(face FaceID) string {
	return fmt.Sprintf("l%d_%s_%02d_%02d", t.Level, face.Letter(), t.Row, t.Col)
}
