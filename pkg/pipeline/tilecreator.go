package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"cubepano/internal/models"
	"cubepano/pkg/gps"
	"cubepano/pkg/imageio"
	"cubepano/pkg/multires"
	"cubepano/pkg/preview"
	"cubepano/pkg/projection"
	"cubepano/pkg/scene"
	"cubepano/pkg/tiles"
)

// TileResult describes the output of one tiled panorama
type TileResult struct {
	OutDir string
	Levels []int
	Tiles  int
	Scene  *scene.Scene
}

// TileCreator turns equirectangular panoramas into multires cube tile
// pyramids with preview images and a scene description.
//
// Each panorama is processed as follows:
// 1. Load the source and plan the pyramid levels from its width
// 2. For every face: render once at the largest level, write all levels,
//    keep a small preview copy and drop the render
// 3. Write preview.jpg and thumb.jpg
// 4. Look up GPS coordinates
// 5. Emit the scene snippet to stdout and scene.xml
type TileCreator struct {
	params *Params
	log    *zap.Logger
}

// NewTileCreator creates a tile creator. A nil logger disables logging.
func NewTileCreator(params *Params, log *zap.Logger) *TileCreator {
	if params == nil {
		params = DefaultParams()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TileCreator{params: params, log: log}
}

// OutputDir returns <dir>/<stem>.tiles for an input path
func OutputDir(input string) string {
	return filepath.Join(filepath.Dir(input), stem(input)+".tiles")
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Run processes every input and reports the aggregate outcome
func (tc *TileCreator) Run(ctx context.Context, inputs []string) Summary {
	return runBatch(ctx, tc.log, "tiling", inputs, true, func(ctx context.Context, input string) error {
		_, err := tc.Process(ctx, input)
		return err
	})
}

// Process tiles a single equirectangular panorama
func (tc *TileCreator) Process(ctx context.Context, input string) (*TileResult, error) {
	input, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	name := stem(input)
	outDir := OutputDir(input)
	log := tc.log.With(zap.String("panorama", name))

	// Step 1: Load the source and plan the levels
	log.Info("Step 1: Loading source", zap.String("input", input), zap.String("output", outDir))
	src, err := imageio.Load(input)
	if err != nil {
		return nil, err
	}

	levels, err := multires.PlanChecked(src.Width)
	if err != nil {
		return nil, err
	}
	maxSize := levels[len(levels)-1]
	log.Info("Planned levels",
		zap.Int("width", src.Width),
		zap.Int("height", src.Height),
		zap.Int("maxLevel", maxSize),
		zap.Ints("levels", levels))

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", imageio.ErrIO, err)
	}

	sink, archive, err := tc.openSinks(outDir)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if archive != nil && !ok {
			archive.Close()
		}
	}()

	writer := tiles.NewWriter(sink, log)
	writer.Workers = tc.params.LevelWorkers
	if tc.params.DebugLabels {
		if writer.Labeler, err = tiles.NewLabeler(); err != nil {
			return nil, err
		}
	}

	// Step 2: Render each face once and write its pyramid
	composer := preview.NewComposer(tc.params.PreviewFaceSize, tc.params.ThumbSize)
	forward := projection.NewForwardProjector(tc.params.NumCores)
	total := 0
	for _, face := range models.AllFaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		log.Info("Step 2: Projecting face", zap.String("face", face.Letter()), zap.Int("size", maxSize))
		render, err := forward.Render(src, face, maxSize)
		if err != nil {
			return nil, err
		}

		n, err := writer.WriteFace(render, levels)
		if err != nil {
			return nil, err
		}
		total += n

		if err := composer.Add(face, render.Buffer); err != nil {
			return nil, err
		}
		log.Info("Face written",
			zap.String("face", face.Letter()),
			zap.Int("tiles", n),
			zap.Duration("elapsed", time.Since(start)))
	}

	// Step 3: Preview strip and thumbnail
	log.Info("Step 3: Writing preview images")
	strip, err := composer.Strip()
	if err != nil {
		return nil, err
	}
	if err := imageio.Save(filepath.Join(outDir, "preview.jpg"), strip, tc.params.JPEGQuality); err != nil {
		return nil, err
	}
	thumb, err := composer.Thumb()
	if err != nil {
		return nil, err
	}
	if err := imageio.Save(filepath.Join(outDir, "thumb.jpg"), thumb, tc.params.JPEGQuality); err != nil {
		return nil, err
	}

	// Step 4: GPS coordinates
	log.Info("Step 4: Reading GPS coordinates")
	var coords gps.Coordinates
	if tc.params.GPS != nil {
		coords = tc.params.GPS.Lookup(ctx, input)
	}

	// Step 5: Scene description
	sc := scene.New(name, levels, coords, tc.params.TileFormat.Ext())
	if err := tc.writeScene(outDir, sc); err != nil {
		return nil, err
	}

	if archive != nil {
		meta := map[string]string{
			"name":     name,
			"tilesize": fmt.Sprint(multires.TileSize),
			"multires": multires.Descriptor(levels),
			"format":   tc.params.TileFormat.Ext(),
		}
		for k, v := range meta {
			if err := archive.SetMetadata(k, v); err != nil {
				return nil, fmt.Errorf("archive metadata: %w", err)
			}
		}
		if err := archive.Close(); err != nil {
			return nil, fmt.Errorf("close archive: %w", err)
		}
	}
	ok = true

	log.Info("Panorama tiled", zap.String("output", outDir), zap.Int("tiles", total))
	return &TileResult{OutDir: outDir, Levels: levels, Tiles: total, Scene: sc}, nil
}

// openSinks builds the tile destinations selected by the parameters
func (tc *TileCreator) openSinks(outDir string) (tiles.Sink, *tiles.Archive, error) {
	var sinks tiles.MultiSink
	if tc.params.WriteDirectory {
		sinks = append(sinks, tiles.NewDirSink(outDir, tc.params.TileFormat, tc.params.JPEGQuality))
	}

	var archive *tiles.Archive
	if tc.params.Archive != "" {
		path := tc.params.Archive
		if !filepath.IsAbs(path) {
			path = filepath.Join(outDir, path)
		}
		var err error
		if archive, err = tiles.CreateArchive(path, tc.params.TileFormat, tc.params.JPEGQuality); err != nil {
			return nil, nil, fmt.Errorf("open tile archive: %w", err)
		}
		sinks = append(sinks, archive)
	}

	switch len(sinks) {
	case 0:
		return nil, nil, fmt.Errorf("no tile output selected")
	case 1:
		return sinks[0], archive, nil
	default:
		return sinks, archive, nil
	}
}

func (tc *TileCreator) writeScene(outDir string, sc *scene.Scene) error {
	var b bytes.Buffer
	if err := sc.Render(&b); err != nil {
		return fmt.Errorf("render scene: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "scene.xml"), b.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: %w", imageio.ErrIO, err)
	}

	out := tc.params.Stdout
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintln(out, "\n--- XML snippet (paste into tour.xml) ---")
	if _, err := out.Write(b.Bytes()); err != nil {
		return fmt.Errorf("write scene snippet: %w", err)
	}
	fmt.Fprintln(out, "-----------------------------------------")
	return nil
}
