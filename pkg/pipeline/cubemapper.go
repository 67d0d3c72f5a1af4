package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cubepano/internal/models"
	"cubepano/pkg/imageio"
	"cubepano/pkg/projection"
)

// CubeMapper exports the six cube faces of an equirectangular panorama as
// separate files <stem>_<letter>.<ext> next to the input
type CubeMapper struct {
	params *Params
	log    *zap.Logger
}

// NewCubeMapper creates a cube mapper. A nil logger disables logging.
func NewCubeMapper(params *Params, log *zap.Logger) *CubeMapper {
	if params == nil {
		params = DefaultParams()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CubeMapper{params: params, log: log}
}

// FacePath returns the export path of one face of input
func FacePath(input string, face models.FaceID, format imageio.Format) string {
	return filepath.Join(filepath.Dir(input), stem(input)+"_"+face.Letter()+"."+format.Ext())
}

// Run processes every input and reports the aggregate outcome
func (cm *CubeMapper) Run(ctx context.Context, inputs []string) Summary {
	return runBatch(ctx, cm.log, "cube mapping", inputs, true, func(ctx context.Context, input string) error {
		_, err := cm.Process(ctx, input)
		return err
	})
}

// Process writes the six faces of one panorama and returns their paths in
// processing order. The face size is width/π rounded half to even.
func (cm *CubeMapper) Process(ctx context.Context, input string) ([]string, error) {
	input, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	log := cm.log.With(zap.String("panorama", stem(input)))

	src, err := imageio.Load(input)
	if err != nil {
		return nil, err
	}
	size := projection.CubeFaceSize(src.Width)
	log.Info("Mapping to cube faces",
		zap.Int("width", src.Width),
		zap.Int("height", src.Height),
		zap.Int("faceSize", size))

	forward := projection.NewForwardProjector(cm.params.NumCores)
	paths := make([]string, 0, len(models.AllFaces))
	for _, face := range models.AllFaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		render, err := forward.Render(src, face, size)
		if err != nil {
			return nil, err
		}
		out := FacePath(input, face, cm.params.CubeFormat)
		if err := imageio.Save(out, render.Buffer, cm.params.JPEGQuality); err != nil {
			return nil, err
		}
		paths = append(paths, out)
		log.Info("Face written",
			zap.String("face", face.Letter()),
			zap.String("file", filepath.Base(out)),
			zap.Duration("elapsed", time.Since(start)))
	}
	return paths, nil
}
