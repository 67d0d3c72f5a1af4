// Package projection converts between equirectangular panoramas and cube faces.
//
// The coordinate system is right-handed with +Z pointing at the front face,
// +X at the right face and +Y at the up face. Face-plane coordinates (u, v)
// range over [-1, 1] with u growing to screen-right and v growing to
// screen-up.
package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"cubepano/internal/models"
)

// directionFunc maps face-plane coordinates to an unnormalized direction
type directionFunc func(u, v float64) r3.Vec

// faceDirections holds the forward mapping for every face, indexed by FaceID
var faceDirections = [6]directionFunc{
	models.Front: func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: v, Z: 1} },
	models.Back:  func(u, v float64) r3.Vec { return r3.Vec{X: -u, Y: v, Z: -1} },
	models.Right: func(u, v float64) r3.Vec { return r3.Vec{X: 1, Y: v, Z: -u} },
	models.Left:  func(u, v float64) r3.Vec { return r3.Vec{X: -1, Y: v, Z: u} },
	models.Up:    func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: 1, Z: -v} },
	models.Down:  func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: -1, Z: v} },
}

func directionFor(face models.FaceID) (directionFunc, error) {
	if !face.Valid() {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidFace, int(face))
	}
	return faceDirections[face], nil
}

// FaceDirection returns the unnormalized direction through point (u, v)
// on the given face.
func FaceDirection(face models.FaceID, u, v float64) (r3.Vec, error) {
	fn, err := directionFor(face)
	if err != nil {
		return r3.Vec{}, err
	}
	return fn(u, v), nil
}

// LonLat normalizes d and returns its longitude in [-π, π] and latitude
// in [-π/2, π/2].
func LonLat(d r3.Vec) (lon, lat float64) {
	n := r3.Unit(d)
	lon = math.Atan2(n.X, n.Z)
	lat = math.Asin(clamp(n.Y, -1, 1))
	return lon, lat
}

// LonLatDirection returns the unit direction for a longitude/latitude pair
func LonLatDirection(lon, lat float64) r3.Vec {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	return r3.Vec{X: cosLat * sinLon, Y: sinLat, Z: cosLat * cosLon}
}

// EquirectPixel maps a longitude/latitude to fractional source coordinates
// in a width x height equirectangular image.
func EquirectPixel(lon, lat float64, width, height int) (px, py float64) {
	px = (lon/math.Pi + 1) * 0.5 * float64(width-1)
	py = (0.5 - lat/math.Pi) * float64(height-1)
	return px, py
}

// EquirectLonLat is the longitude/latitude at the center of output pixel
// (col, row) in a width x height equirectangular image.
func EquirectLonLat(col, row, width, height int) (lon, lat float64) {
	lon = (2*float64(col)/span(width) - 1) * math.Pi
	lat = (0.5 - float64(row)/span(height)) * math.Pi
	return lon, lat
}

// FaceUV selects the cube face a unit direction falls on and returns its
// face-plane coordinates.
//
// The dominant axis is tested in the order X, Y, Z so a direction lying
// exactly on a seam between families resolves to the earlier family.
func FaceUV(d r3.Vec) (face models.FaceID, u, v float64) {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)

	xDom := ax >= ay && ax >= az
	yDom := !xDom && ay >= az

	switch {
	case xDom && d.X > 0:
		return models.Right, -d.Z / d.X, d.Y / d.X
	case xDom && d.X < 0:
		return models.Left, -d.Z / d.X, -d.Y / d.X
	case yDom && d.Y > 0:
		return models.Up, d.X / d.Y, -d.Z / d.Y
	case yDom && d.Y < 0:
		return models.Down, -d.X / d.Y, -d.Z / d.Y
	case !xDom && !yDom && d.Z < 0:
		return models.Back, d.X / d.Z, -d.Y / d.Z
	case !xDom && !yDom && d.Z > 0:
		return models.Front, d.X / d.Z, d.Y / d.Z
	}
	// Only the zero vector gets here.
	return models.Front, 0, 0
}

// FacePixel maps face-plane coordinates to fractional pixel coordinates on
// a face of the given side length.
func FacePixel(u, v float64, size int) (px, py float64) {
	px = (u + 1) * 0.5 * float64(size-1)
	py = (1 - v) * 0.5 * float64(size-1)
	return px, py
}

// faceCoord is the face-plane coordinate of pixel index i along an axis of
// n samples, running evenly from start to -start inclusive.
func faceCoord(i, n int, start float64) float64 {
	if n <= 1 {
		return start
	}
	return start - 2*start*float64(i)/float64(n-1)
}

func span(n int) float64 {
	if n <= 1 {
		return 1
	}
	return float64(n - 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
