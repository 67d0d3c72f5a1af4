package projection

import (
	"errors"
	"fmt"
	"strings"

	"cubepano/internal/models"
)

var (
	// ErrIncompletePanorama means fewer than six faces were supplied
	ErrIncompletePanorama = errors.New("incomplete panorama")

	// ErrNonSquareFace means a face buffer is not square
	ErrNonSquareFace = errors.New("cube face is not square")

	// ErrFaceSizeMismatch means the faces do not share one side length
	ErrFaceSizeMismatch = errors.New("cube face sizes differ")
)

// MissingFacesError lists the faces absent from a panorama set
type MissingFacesError struct {
	Faces []models.FaceID
}

func (e *MissingFacesError) Error() string {
	letters := make([]string, len(e.Faces))
	for i, f := range e.Faces {
		letters[i] = f.Letter()
	}
	return fmt.Sprintf("%v: missing faces [%s]", ErrIncompletePanorama, strings.Join(letters, " "))
}

// Unwrap lets errors.Is match ErrIncompletePanorama
func (e *MissingFacesError) Unwrap() error { return ErrIncompletePanorama }

// ValidateSet checks that set holds all six faces, each square and of the
// same side length, and returns that side length. A set that fails is
// rejected as a whole.
func ValidateSet(set models.PanoramaSet) (int, error) {
	if missing := set.Missing(); len(missing) > 0 {
		return 0, &MissingFacesError{Faces: missing}
	}

	size := 0
	for _, face := range models.AllFaces {
		buf := set[face].Buffer
		if !buf.Square() {
			return 0, fmt.Errorf("%w: face %s is %dx%d", ErrNonSquareFace, face, buf.Width, buf.Height)
		}
		if size == 0 {
			size = buf.Width
		} else if buf.Width != size {
			return 0, fmt.Errorf("%w: face %s is %d px, expected %d", ErrFaceSizeMismatch, face, buf.Width, size)
		}
	}
	return size, nil
}
