// Package discovery locates the six face files of a cube panorama from any
// one of them.
//
// A face file is named <prefix>_<letter>.<ext> where letter is one of
// f, b, r, l, u, d. Given one such path, the other five are looked up in
// the same directory.
package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"cubepano/internal/models"
	"cubepano/pkg/projection"
)

// Extensions are tried in this order; the first existing file wins
var Extensions = []string{".tif", ".tiff", ".TIF", ".TIFF", ".jpg", ".jpeg", ".JPG", ".JPEG"}

// FacePaths maps each face to its file
type FacePaths map[models.FaceID]string

// Panorama is a complete set of six face files sharing a prefix
type Panorama struct {
	Dir    string
	Prefix string
	Faces  FacePaths
}

// Name returns the prefix, which is also the stem of the stitched output
func (p Panorama) Name() string { return p.Prefix }

// Skipped records an input that did not yield a panorama
type Skipped struct {
	Path   string
	Reason error
}

// ErrNoFaceSuffix is the skip reason for a file name without a face suffix
var ErrNoFaceSuffix = errors.New("no recognised face suffix (_f/_b/_r/_l/_u/_d)")

// ParseFacePath splits a face file path into its absolute directory, its
// prefix and the face it depicts. ok is false when the file name does not
// end with a face suffix.
func ParseFacePath(path string) (dir, prefix string, face models.FaceID, ok bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	dir = filepath.Dir(abs)
	base := filepath.Base(abs)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	for _, f := range models.AllFaces {
		suffix := "_" + f.Letter()
		if strings.HasSuffix(stem, suffix) {
			return dir, strings.TrimSuffix(stem, suffix), f, true
		}
	}
	return dir, "", 0, false
}

// FindFaces looks up every face of prefix in dir. Faces with no file are
// absent from the result.
func FindFaces(dir, prefix string) FacePaths {
	found := make(FacePaths)
	for _, f := range models.AllFaces {
		for _, ext := range Extensions {
			candidate := filepath.Join(dir, prefix+"_"+f.Letter()+ext)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				found[f] = candidate
				break
			}
		}
	}
	return found
}

// Missing returns the faces without a file, in processing order
func (fp FacePaths) Missing() []models.FaceID {
	var missing []models.FaceID
	for _, f := range models.AllFaces {
		if _, ok := fp[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Collect turns an arbitrary list of face paths into complete panoramas.
// Several faces of the same panorama yield it once. Inputs without a face
// suffix and panoramas with missing faces are reported in skipped; the
// latter carry a *projection.MissingFacesError.
func Collect(paths []string) (panoramas []Panorama, skipped []Skipped) {
	seen := make(map[string]bool)
	for _, path := range paths {
		dir, prefix, _, ok := ParseFacePath(path)
		if !ok {
			skipped = append(skipped, Skipped{Path: path, Reason: ErrNoFaceSuffix})
			continue
		}

		key := filepath.Join(dir, prefix)
		if seen[key] {
			continue
		}
		seen[key] = true

		faces := FindFaces(dir, prefix)
		if missing := faces.Missing(); len(missing) > 0 {
			skipped = append(skipped, Skipped{
				Path:   path,
				Reason: &projection.MissingFacesError{Faces: missing},
			})
			continue
		}
		panoramas = append(panoramas, Panorama{Dir: dir, Prefix: prefix, Faces: faces})
	}
	return panoramas, skipped
}
