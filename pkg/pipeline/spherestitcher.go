package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cubepano/internal/models"
	"cubepano/pkg/discovery"
	"cubepano/pkg/imageio"
	"cubepano/pkg/projection"
)

// SphereStitcher reassembles six cube faces into an equirectangular TIFF
// saved as <dir>/<prefix>.tif
type SphereStitcher struct {
	params *Params
	log    *zap.Logger
}

// NewSphereStitcher creates a sphere stitcher. A nil logger disables logging.
func NewSphereStitcher(params *Params, log *zap.Logger) *SphereStitcher {
	if params == nil {
		params = DefaultParams()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SphereStitcher{params: params, log: log}
}

// Run discovers the panoramas referenced by inputs (any face of each is
// enough) and stitches them. Incomplete panoramas and unrecognised names
// are skipped with a warning. ErrNoPanoramas is returned when nothing is
// left to stitch.
func (ss *SphereStitcher) Run(ctx context.Context, inputs []string) (Summary, error) {
	panoramas, skipped := discovery.Collect(inputs)
	for _, s := range skipped {
		var mfe *projection.MissingFacesError
		if errors.As(s.Reason, &mfe) {
			letters := make([]string, len(mfe.Faces))
			for i, f := range mfe.Faces {
				letters[i] = f.Letter()
			}
			ss.log.Warn("skipping incomplete panorama", zap.String("input", s.Path), zap.Strings("missing", letters))
			continue
		}
		ss.log.Warn("skipping input", zap.String("input", s.Path), zap.Error(s.Reason))
	}
	if len(panoramas) == 0 {
		return Summary{}, ErrNoPanoramas
	}

	byKey := make(map[string]discovery.Panorama, len(panoramas))
	keys := make([]string, 0, len(panoramas))
	for _, p := range panoramas {
		key := filepath.Join(p.Dir, p.Prefix)
		byKey[key] = p
		keys = append(keys, key)
	}

	summary := runBatch(ctx, ss.log, "stitching", keys, false, func(ctx context.Context, key string) error {
		_, err := ss.Process(ctx, byKey[key])
		return err
	})
	return summary, nil
}

// Process loads, validates and stitches one panorama and returns the
// output path
func (ss *SphereStitcher) Process(ctx context.Context, p discovery.Panorama) (string, error) {
	out := filepath.Join(p.Dir, p.Prefix+".tif")
	log := ss.log.With(zap.String("panorama", p.Prefix))
	log.Info("Stitching", zap.String("output", out))

	set := make(models.PanoramaSet, len(models.AllFaces))
	for _, face := range models.AllFaces {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path, ok := p.Faces[face]
		if !ok {
			return "", &projection.MissingFacesError{Faces: []models.FaceID{face}}
		}
		buf, err := imageio.Load(path)
		if err != nil {
			return "", err
		}
		set[face] = &models.CubeFace{Face: face, Buffer: buf}
		log.Debug("Loaded face", zap.String("face", face.Letter()), zap.String("file", filepath.Base(path)))
	}

	size, err := projection.ValidateSet(set)
	if err != nil {
		return "", err
	}
	width, height := projection.EquirectSize(size)
	log.Info("Projecting",
		zap.Int("faceSize", size),
		zap.Int("width", width),
		zap.Int("height", height))

	start := time.Now()
	result, err := projection.NewInverseProjector(ss.params.NumCores).Reconstruct(set, width, height)
	if err != nil {
		return "", err
	}
	// Faces are no longer needed once the projection is done
	clear(set)

	if err := imageio.Save(out, result, 0); err != nil {
		return "", fmt.Errorf("save stitched panorama: %w", err)
	}
	log.Info("Stitched", zap.String("output", out), zap.Duration("elapsed", time.Since(start)))
	return out, nil
}
