package app

import (
	"errors"
	"image"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/soocke/inky-frame-go/config"
	"github.com/soocke/inky-frame-go/domain/queue"
	"github.com/soocke/inky-frame-go/render"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeSink records pushed frames.
type fakeSink struct {
	w, h   int
	pushed []image.Image
	err    error
}

func (s *fakeSink) Size() (int, int) { return s.w, s.h }

func (s *fakeSink) Push(img image.Image) error {
	if s.err != nil {
		return s.err
	}
	s.pushed = append(s.pushed, img)
	return nil
}

func writePhoto(t *testing.T, dir, name string) {
	t.Helper()
	img := imaging.New(32, 24, image.White.C)
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		t.Fatalf("save %s: %v", name, err)
	}
}

func testController(t *testing.T, photoDir string, sink *fakeSink, maxFailures int) *CycleController {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height = 64, 48
	cfg.PhotoDir = photoDir
	rng := rand.New(rand.NewSource(3))
	q := queue.New(photoDir, filepath.Join(t.TempDir(), "state.json"), rng, discardLogger)
	comp := render.NewCompositor(cfg, rng, discardLogger)
	return NewCycleController(q, comp, sink, maxFailures, discardLogger)
}

func TestRunOnce_DisplaysFrame(t *testing.T) {
	dir := t.TempDir()
	writePhoto(t, dir, "a.jpg")
	sink := &fakeSink{w: 64, h: 48}
	c := testController(t, dir, sink, 3)

	if err := c.RunOnce(); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(sink.pushed) != 1 {
		t.Fatalf("expected 1 pushed frame, got %d", len(sink.pushed))
	}
	b := sink.pushed[0].Bounds()
	if b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("pushed frame is %dx%d, want 64x48", b.Dx(), b.Dy())
	}
	if c.Failures() != 0 {
		t.Fatalf("failure streak not reset")
	}
}

func TestRunOnce_EmptyCatalogSkipsCycle(t *testing.T) {
	sink := &fakeSink{w: 64, h: 48}
	c := testController(t, t.TempDir(), sink, 3)

	if err := c.RunOnce(); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
	if len(sink.pushed) != 0 {
		t.Fatalf("frame pushed despite empty catalog")
	}
	if c.Failures() != 1 {
		t.Fatalf("expected failure streak 1, got %d", c.Failures())
	}
}

func TestRunOnce_UndecodableImageFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sink := &fakeSink{w: 64, h: 48}
	c := testController(t, dir, sink, 3)

	if err := c.RunOnce(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRunOnce_FailureStreakAndRecovery(t *testing.T) {
	dir := t.TempDir()
	writePhoto(t, dir, "a.jpg")
	sink := &fakeSink{w: 64, h: 48, err: errors.New("panel unplugged")}
	c := testController(t, dir, sink, 2)

	for i := 1; i <= 3; i++ {
		if err := c.RunOnce(); err == nil {
			t.Fatalf("expected sink error on attempt %d", i)
		}
		if c.Failures() != i {
			t.Fatalf("streak %d after %d attempts", c.Failures(), i)
		}
	}

	sink.err = nil
	if err := c.RunOnce(); err != nil {
		t.Fatalf("RunOnce after recovery: %v", err)
	}
	if c.Failures() != 0 {
		t.Fatalf("streak not reset after success")
	}
}
