package main

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/alecthomas/kong"

	"github.com/soocke/inky-frame-go/app"
	"github.com/soocke/inky-frame-go/config"
	"github.com/soocke/inky-frame-go/domain/queue"
	"github.com/soocke/inky-frame-go/preprocess"
)

type CLI struct {
	Config string `help:"Path to JSON config file" default:"inky-frame.json" type:"path"`
	Debug  bool   `help:"Enable debug logging and instrumentation"`

	Run        RunCmd        `cmd:"" default:"1" help:"Run the slideshow loop"`
	Once       OnceCmd       `cmd:"" help:"Display a single frame and exit"`
	Preprocess PreprocessCmd `cmd:"" help:"Resize raw photos into the slideshow directory"`
	Reset      ResetCmd      `cmd:"" help:"Discard the persisted queue state"`
}

type RunCmd struct{}

func (cmd *RunCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	a, err := app.NewApp(cfg, logger)
	if err != nil {
		return err
	}
	a.Start()
	return nil
}

type OnceCmd struct{}

func (cmd *OnceCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	a, err := app.NewApp(cfg, logger)
	if err != nil {
		return err
	}
	return a.RunOnce()
}

type PreprocessCmd struct {
	RawDir         string `arg:"" name:"raw-dir" help:"Directory of original photos" type:"existingdir"`
	OutDir         string `help:"Output directory (defaults to the configured photo directory)"`
	Quality        int    `help:"JPEG quality of processed photos" default:"90"`
	DedupeDistance int    `help:"Perceptual hash distance under which photos are skipped as duplicates; -1 disables" default:"8"`
}

func (cmd *PreprocessCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	out := cmd.OutDir
	if out == "" {
		out = cfg.PhotoDir
	}
	_, err := preprocess.Run(preprocess.Options{
		RawDir:         cmd.RawDir,
		OutDir:         out,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Quality:        cmd.Quality,
		DedupeDistance: cmd.DedupeDistance,
	}, logger)
	return err
}

type ResetCmd struct{}

func (cmd *ResetCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	q := queue.New(cfg.PhotoDir, cfg.StateFile, rng, logger)
	if err := q.Reset(); err != nil {
		return err
	}
	logger.Info("queue state discarded", slog.String("state_file", cfg.StateFile))
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("inky-frame"),
		kong.Description("E-paper photo frame: fair random slideshow with date overlays."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		ctx.FatalIfErrorf(err)
	}
	if cli.Debug {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	// The daemon logs structured JSON; interactive commands log for humans.
	var logger *slog.Logger
	if ctx.Command() == "run" {
		logger = NewLogger(level)
	} else {
		logger = NewTextLogger(level)
	}

	ctx.FatalIfErrorf(ctx.Run(cfg, logger))
}
