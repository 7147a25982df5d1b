package app

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/soocke/inky-frame-go/config"
	"github.com/soocke/inky-frame-go/display"
	"github.com/soocke/inky-frame-go/display/epd"
	"github.com/soocke/inky-frame-go/domain/queue"
	"github.com/soocke/inky-frame-go/render"
)

// Container assembles the queue, compositor, sink and controller.
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Queue      *queue.Queue
	Compositor *render.Compositor
	Sink       display.Sink
	Controller *CycleController
}

// BuildContainer constructs all components. The only fatal error is an
// unconstructible display sink; everything downstream degrades per cycle.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c.Queue = queue.New(cfg.PhotoDir, cfg.StateFile, rng, logger)
	c.Compositor = render.NewCompositor(cfg, rng, logger)

	switch cfg.Display {
	case "epd":
		dev, err := epd.Open(cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("app: opening e-paper panel: %w", err)
		}
		c.Sink = dev
	default:
		c.Sink = display.NewPNGSink(cfg.OutputPath, cfg.Width, cfg.Height)
	}

	c.Controller = NewCycleController(c.Queue, c.Compositor, c.Sink, cfg.MaxConsecutiveFailures, logger)
	return c, nil
}
