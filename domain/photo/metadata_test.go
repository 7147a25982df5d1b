package photo

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestExtract_PNGHasNoMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	rec := Extract(path)
	if rec.Source != SourceUnavailable {
		t.Fatalf("expected unavailable, got %q", rec.Source)
	}
	if rec.HasTimestamp() {
		t.Fatalf("unexpected timestamp for plain PNG")
	}
}

func TestExtract_JPEGWithoutExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	if rec := Extract(path); rec.Source != SourceUnavailable {
		t.Fatalf("expected unavailable, got %q", rec.Source)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	if rec := Extract(filepath.Join(t.TempDir(), "gone.jpg")); rec.Source != SourceUnavailable {
		t.Fatalf("expected unavailable for missing file, got %q", rec.Source)
	}
}

func TestExtract_GarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec := Extract(path); rec.Source != SourceUnavailable {
		t.Fatalf("expected unavailable for garbage file, got %q", rec.Source)
	}
}
