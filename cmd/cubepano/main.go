package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"cubepano/internal/logger"
	"cubepano/pkg/config"
	"cubepano/pkg/pipeline"
)

const usage = `cubepano converts between equirectangular panoramas and cube faces.

Usage:
  cubepano tiles     [flags] <equirect.jpg> [...]   multires cube tiles, preview, thumb, scene XML
  cubepano cube      [flags] <equirect.jpg> [...]   six cube face files <stem>_<f|b|r|l|u|d>
  cubepano sphere    [flags] <face_f.tif> [...]     stitch six faces into <prefix>.tif
  cubepano roundtrip [flags] <equirect.jpg> [...]   project to faces and back, report quality
  cubepano init-config [path]                       write a default config file

Run "cubepano <command> -h" for the flags of a command.
`

// commonFlags are shared by every processing command
type commonFlags struct {
	configPath string
	cores      int
	logLevel   string
	logFile    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", config.DefaultConfigFile, "YAML configuration file")
	fs.IntVar(&c.cores, "cores", 0, "Number of CPU cores to use (default: config value, all available)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&c.logFile, "log-file", "", "Also write logs to this rotating file")
}

// load reads the configuration and applies flag overrides on top of it
func (c *commonFlags) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.cores > 0 {
		cfg.Processing.NumCores = c.cores
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFile != "" {
		cfg.Logging.LogFile = c.logFile
	}
	return cfg, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "tiles":
		return runTiles(ctx, rest)
	case "cube":
		return runCube(ctx, rest)
	case "sphere":
		return runSphere(ctx, rest)
	case "roundtrip":
		return runRoundtrip(ctx, rest)
	case "init-config":
		return runInitConfig(rest)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}

// setup parses flags, loads the configuration, starts the logger and
// builds the processing parameters. Nil parameters mean the caller should
// exit with the returned code.
func setup(fs *flag.FlagSet, common *commonFlags, args []string, apply func(*config.Config)) (*pipeline.Params, *zap.Logger, int) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, nil, 2
	}

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return nil, nil, 1
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return nil, nil, 1
	}

	log, err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return nil, nil, 1
	}

	params, err := pipeline.NewParams(cfg, log)
	if err != nil {
		log.Error("invalid parameters", zap.Error(err))
		return nil, nil, 1
	}
	return params, log, 0
}

func report(log *zap.Logger, what string, s pipeline.Summary, start time.Time) int {
	log.Info(what+" finished",
		zap.Int("processed", s.Processed),
		zap.Int("failed", s.Failed),
		zap.Duration("elapsed", time.Since(start)))
	logger.Sync()
	if !s.OK() {
		return 1
	}
	return 0
}

func runTiles(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("tiles", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	format := fs.String("format", "", "Tile format: jpg, png or tif")
	quality := fs.Int("quality", 0, "JPEG quality 1-100")
	archive := fs.String("archive", "", "Also store tiles in this SQLite file (relative to the tile directory)")
	labels := fs.Bool("labels", false, "Stamp debug labels onto every tile")
	noDir := fs.Bool("no-dir", false, "Do not write the tile directory tree (requires -archive)")
	levelWorkers := fs.Int("level-workers", 0, "Levels of one face processed at once")
	noGPS := fs.Bool("no-gps", false, "Skip the GPS lookup")
	exiftool := fs.String("exiftool", "", "Path to exiftool used when EXIF parsing finds no GPS data")

	params, log, code := setup(fs, &common, args, func(cfg *config.Config) {
		if *format != "" {
			cfg.Tiles.Format = *format
		}
		if *quality > 0 {
			cfg.Tiles.JPEGQuality = *quality
		}
		if *archive != "" {
			cfg.Tiles.Archive = *archive
		}
		if *labels {
			cfg.Tiles.DebugLabels = true
		}
		if *noDir {
			cfg.Tiles.WriteDirectory = false
		}
		if *levelWorkers > 0 {
			cfg.Processing.LevelWorkers = *levelWorkers
		}
		if *noGPS {
			cfg.GPS.Enabled = false
		}
		if *exiftool != "" {
			cfg.GPS.ExiftoolPath = *exiftool
		}
	})
	if params == nil {
		return code
	}

	start := time.Now()
	summary := pipeline.NewTileCreator(params, log).Run(ctx, fs.Args())
	return report(log, "tiling", summary, start)
}

func runCube(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("cube", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	format := fs.String("format", "", "Face file format: tif, jpg or png")

	params, log, code := setup(fs, &common, args, func(cfg *config.Config) {
		if *format != "" {
			cfg.Cube.Format = *format
		}
	})
	if params == nil {
		return code
	}

	start := time.Now()
	summary := pipeline.NewCubeMapper(params, log).Run(ctx, fs.Args())
	return report(log, "cube mapping", summary, start)
}

func runSphere(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("sphere", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)

	params, log, code := setup(fs, &common, args, nil)
	if params == nil {
		return code
	}

	start := time.Now()
	summary, err := pipeline.NewSphereStitcher(params, log).Run(ctx, fs.Args())
	if errors.Is(err, pipeline.ErrNoPanoramas) {
		log.Error("nothing to stitch", zap.Error(err))
		logger.Sync()
		return 1
	}
	return report(log, "stitching", summary, start)
}

func runRoundtrip(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("roundtrip", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	save := fs.Bool("save", false, "Write the reconstruction as <stem>.roundtrip.tif")

	params, log, code := setup(fs, &common, args, nil)
	if params == nil {
		return code
	}

	rt := pipeline.NewRoundtrip(params, log)
	rt.SaveOutput = *save

	start := time.Now()
	summary := rt.Run(ctx, fs.Args())
	return report(log, "round trip", summary, start)
}

func runInitConfig(args []string) int {
	path := config.DefaultConfigFile
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Refusing to overwrite existing %s\n", path)
		return 1
	}
	if err := config.CreateDefaultConfigFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		return 1
	}
	fmt.Printf("Default configuration written to %s\n", path)
	return 0
}
