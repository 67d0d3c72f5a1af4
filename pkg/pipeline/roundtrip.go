package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cubepano/internal/models"
	"cubepano/pkg/imageio"
	"cubepano/pkg/projection"
	"cubepano/pkg/quality"
)

// Roundtrip projects a panorama to cube faces and back and measures how
// much of the source survives
type Roundtrip struct {
	params *Params
	log    *zap.Logger

	// SaveOutput also writes the reconstruction as <stem>.roundtrip.tif
	SaveOutput bool
}

// NewRoundtrip creates a round-trip verifier. A nil logger disables logging.
func NewRoundtrip(params *Params, log *zap.Logger) *Roundtrip {
	if params == nil {
		params = DefaultParams()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Roundtrip{params: params, log: log}
}

// Run verifies every input and reports the aggregate outcome
func (rt *Roundtrip) Run(ctx context.Context, inputs []string) Summary {
	return runBatch(ctx, rt.log, "round trip", inputs, true, func(ctx context.Context, input string) error {
		_, err := rt.Process(ctx, input)
		return err
	})
}

// Process runs the round trip for one equirectangular image file
func (rt *Roundtrip) Process(ctx context.Context, input string) (quality.Report, error) {
	log := rt.log.With(zap.String("panorama", stem(input)))

	src, err := imageio.Load(input)
	if err != nil {
		return quality.Report{}, err
	}

	report, recon, err := rt.Verify(ctx, src)
	if err != nil {
		return quality.Report{}, err
	}
	log.Info("Round trip quality",
		zap.Float64("rmse", report.RMSE),
		zap.Float64("psnr", report.PSNR),
		zap.Float64("ssim", report.SSIM),
		zap.Float64("mi", report.MI),
		zap.Float64("entropyDiff", report.EntropyDiff),
		zap.Float64("edgeCorrelation", report.EdgeCorrelation))

	if rt.SaveOutput {
		out := filepath.Join(filepath.Dir(input), stem(input)+".roundtrip.tif")
		if err := imageio.Save(out, recon, 0); err != nil {
			return report, err
		}
		log.Info("Reconstruction saved", zap.String("output", out))
	}
	return report, nil
}

// Verify renders src to six faces of side round(width/π), reconstructs an
// image of the source dimensions from them and compares the two
func (rt *Roundtrip) Verify(ctx context.Context, src *models.PixelBuffer) (quality.Report, *models.PixelBuffer, error) {
	size := projection.CubeFaceSize(src.Width)

	start := time.Now()
	set, err := projection.NewForwardProjector(rt.params.NumCores).RenderAll(src, size)
	if err != nil {
		return quality.Report{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return quality.Report{}, nil, err
	}
	rt.log.Debug("Forward projection done", zap.Int("faceSize", size), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	recon, err := projection.NewInverseProjector(rt.params.NumCores).Reconstruct(set, src.Width, src.Height)
	if err != nil {
		return quality.Report{}, nil, err
	}
	rt.log.Debug("Inverse projection done", zap.Duration("elapsed", time.Since(start)))

	report, err := quality.Compare(src, recon)
	if err != nil {
		return quality.Report{}, nil, err
	}
	return report, recon, nil
}
