package tiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cubepano/internal/models"
	"cubepano/pkg/imageio"
)

// Sink receives finished tiles. Implementations must be safe for
// concurrent use, since levels are written in parallel.
type Sink interface {
	WriteTile(face models.FaceID, coord models.TileCoordinate, buf *models.PixelBuffer) error
}

// TileDir returns the directory holding one row of tiles:
// <root>/<letter>/l<level>/<row>
func TileDir(root string, face models.FaceID, coord models.TileCoordinate) string {
	return filepath.Join(root, face.Letter(), fmt.Sprintf("l%d", coord.Level), fmt.Sprintf("%02d", coord.Row))
}

// TilePath returns the full tile file path, e.g.
// <root>/f/l1/01/l1_f_01_02.jpg
func TilePath(root string, face models.FaceID, coord models.TileCoordinate, ext string) string {
	return filepath.Join(TileDir(root, face, coord), coord.Name(face)+"."+ext)
}

// DirSink writes each tile as an image file into the viewer directory tree
type DirSink struct {
	Root    string
	Format  imageio.Format
	Quality int

	mu      sync.Mutex
	created map[string]bool
}

// NewDirSink creates a sink rooted at root
func NewDirSink(root string, format imageio.Format, quality int) *DirSink {
	return &DirSink{
		Root:    root,
		Format:  format,
		Quality: quality,
		created: make(map[string]bool),
	}
}

// WriteTile implements Sink
func (s *DirSink) WriteTile(face models.FaceID, coord models.TileCoordinate, buf *models.PixelBuffer) error {
	dir := TileDir(s.Root, face, coord)
	if err := s.ensureDir(dir); err != nil {
		return err
	}
	return imageio.Save(filepath.Join(dir, coord.Name(face)+"."+s.Format.Ext()), buf, s.Quality)
}

func (s *DirSink) ensureDir(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created == nil {
		s.created = make(map[string]bool)
	}
	if s.created[dir] {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", imageio.ErrIO, err)
	}
	s.created[dir] = true
	return nil
}

// MultiSink fans every tile out to several sinks
type MultiSink []Sink

// WriteTile implements Sink. Every sink is attempted; errors are joined.
func (m MultiSink) WriteTile(face models.FaceID, coord models.TileCoordinate, buf *models.PixelBuffer) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteTile(face, coord, buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
