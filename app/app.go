// Package app wires the photo-frame components together and drives the
// fixed-interval display loop.
package app

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soocke/inky-frame-go/config"
	"github.com/soocke/inky-frame-go/debug"
)

// App owns the display loop: one cycle immediately on startup, then one
// per configured interval. A cycle in flight always runs to completion;
// termination signals are honored between cycles.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	c      *Container
}

// NewApp builds the application container.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	c, err := BuildContainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, logger: logger, c: c}, nil
}

// RunOnce performs a single display cycle (the `once` command).
func (a *App) RunOnce() error {
	return a.c.Controller.RunOnce()
}

// Start runs the display loop until SIGINT or SIGTERM.
func (a *App) Start() {
	if a.cfg.Debug {
		debug.StartMemLogger(30*time.Second, a.logger)
	}

	interval := time.Duration(a.cfg.IntervalSeconds) * time.Second
	a.logger.Info("slideshow started",
		slog.String("photo_dir", a.cfg.PhotoDir),
		slog.String("display", a.cfg.Display),
		slog.Duration("interval", interval))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Cycle errors are already logged by the controller; the loop only
	// cares about pacing and shutdown.
	_ = a.c.Controller.RunOnce()
	for {
		select {
		case <-ticker.C:
			_ = a.c.Controller.RunOnce()
		case sig := <-sigs:
			a.logger.Info("shutting down", slog.String("signal", sig.String()))
			a.shutdown()
			return
		}
	}
}

// shutdown puts sinks that support it (the e-paper panel) to sleep.
func (a *App) shutdown() {
	type halter interface{ Halt() error }
	if h, ok := a.c.Sink.(halter); ok {
		if err := h.Halt(); err != nil {
			a.logger.Warn("halting display failed", slog.String("err", err.Error()))
		}
	}
}
