package tiles

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"cubepano/internal/models"
	"cubepano/pkg/multires"
)

// Writer resizes one face render to every pyramid level and sends the
// resulting tiles to its Sink
type Writer struct {
	// TileSize is the tile edge length, multires.TileSize by default
	TileSize int

	// Sink receives every tile
	Sink Sink

	// Labeler, when set, stamps debug labels onto every tile
	Labeler *Labeler

	// Workers bounds how many levels of a face are processed at once
	Workers int

	log *zap.Logger
}

// NewWriter creates a writer with the default tile size and two level
// workers. A nil logger disables logging.
func NewWriter(sink Sink, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		TileSize: multires.TileSize,
		Sink:     sink,
		Workers:  2,
		log:      log,
	}
}

// WriteFace writes every level of one face. levels must be ascending; the
// render is normally the size of the last (largest) level.
// It returns the number of tiles written.
func (w *Writer) WriteFace(face *models.CubeFace, levels []int) (int, error) {
	if face == nil || !face.Face.Valid() {
		return 0, models.ErrInvalidFace
	}
	if w.Sink == nil {
		return 0, fmt.Errorf("tile writer has no sink")
	}
	tileSize := w.TileSize
	if tileSize <= 0 {
		tileSize = multires.TileSize
	}
	workers := w.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(levels) {
		workers = len(levels)
	}

	start := time.Now()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		errs  []error
		total int
	)
	sem := make(chan struct{}, workers)
	for i, size := range levels {
		sem <- struct{}{}
		wg.Add(1)
		go func(index, size int) {
			defer wg.Done()
			defer func() { <-sem }()

			n, err := w.writeLevel(face, index, size, tileSize)
			mu.Lock()
			defer mu.Unlock()
			total += n
			if err != nil {
				errs = append(errs, fmt.Errorf("face %s level %d (%d px): %w", face.Face, index, size, err))
			}
		}(i+1, size)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return total, err
	}

	w.log.Debug("face tiles written",
		zap.String("face", face.Face.String()),
		zap.Int("levels", len(levels)),
		zap.Int("tiles", total),
		zap.Duration("elapsed", time.Since(start)))
	return total, nil
}

func (w *Writer) writeLevel(face *models.CubeFace, index, size, tileSize int) (int, error) {
	lt, err := SliceLevel(face.Buffer, index, size, tileSize)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, t := range lt.Tiles {
		buf := t.Buffer
		if w.Labeler != nil {
			if buf, err = w.Labeler.Label(face.Face, t.Coord, buf); err != nil {
				return written, err
			}
		}
		if err := w.Sink.WriteTile(face.Face, t.Coord, buf); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
