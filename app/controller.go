package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/inky-frame-go/display"
	"github.com/soocke/inky-frame-go/domain/photo"
	"github.com/soocke/inky-frame-go/render"
)

// ImageQueue supplies the next image path for a display cycle.
type ImageQueue interface {
	Next() (string, error)
}

// CycleController runs one display cycle end to end: pick the next image,
// load it, derive the capture record, composite the overlay and hand the
// raster to the sink. Every failure is cycle-scoped; the external
// scheduler simply retries on the following interval.
type CycleController struct {
	queue  ImageQueue
	comp   *render.Compositor
	sink   display.Sink
	logger *slog.Logger

	maxFailures int
	failures    int
	now         func() time.Time
}

// NewCycleController wires a controller. maxFailures is the consecutive
// failure streak after which log messages escalate to error level.
func NewCycleController(q ImageQueue, comp *render.Compositor, sink display.Sink, maxFailures int, logger *slog.Logger) *CycleController {
	return &CycleController{
		queue:       q,
		comp:        comp,
		sink:        sink,
		logger:      logger,
		maxFailures: maxFailures,
		now:         time.Now,
	}
}

// RunOnce performs one display cycle. The returned error is informational;
// it never terminates the process.
func (c *CycleController) RunOnce() error {
	path, err := c.queue.Next()
	if err != nil {
		return c.fail("selecting image", err)
	}
	name := filepath.Base(path)

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return c.fail("loading "+name, err)
	}

	rec := photo.Extract(path)
	raster := c.comp.Render(src, rec, c.now())

	if err := c.sink.Push(raster); err != nil {
		return c.fail("displaying "+name, err)
	}

	c.failures = 0
	c.logger.Info("frame displayed",
		slog.String("image", name),
		slog.String("capture_source", string(rec.Source)))
	return nil
}

// Failures reports the current consecutive failure streak.
func (c *CycleController) Failures() int { return c.failures }

func (c *CycleController) fail(stage string, err error) error {
	c.failures++
	wrapped := fmt.Errorf("cycle: %s: %w", stage, err)
	if c.failures >= c.maxFailures {
		// Persistent trouble (directory unmounted, dead panel); keep
		// retrying but make it visible.
		c.logger.Error("display cycles failing persistently",
			slog.Int("consecutive_failures", c.failures),
			slog.String("err", wrapped.Error()))
	} else {
		c.logger.Warn("display cycle failed",
			slog.Int("consecutive_failures", c.failures),
			slog.String("err", wrapped.Error()))
	}
	return wrapped
}
