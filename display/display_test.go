package display

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestPNGSink_WritesFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	s := NewPNGSink(path, 60, 44)

	if w, h := s.Size(); w != 60 || h != 44 {
		t.Fatalf("Size = %dx%d", w, h)
	}
	if err := s.Push(image.NewRGBA(image.Rect(0, 0, 60, 44))); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("frame file missing: %v", err)
	}

	// Replacing an existing frame leaves no temp files behind.
	if err := s.Push(image.NewRGBA(image.Rect(0, 0, 60, 44))); err != nil {
		t.Fatalf("second Push: %v", err)
	}
	des, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(des) != 1 {
		t.Fatalf("unexpected files after replace: %d", len(des))
	}
}

func TestPNGSink_RejectsWrongSize(t *testing.T) {
	s := NewPNGSink(filepath.Join(t.TempDir(), "frame.png"), 60, 44)
	if err := s.Push(image.NewRGBA(image.Rect(0, 0, 10, 10))); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}
