// Package display defines the sink the frame cycle hands finished rasters
// to, plus a file-backed sink for development machines without a panel.
package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Sink receives composited frames at the panel's native resolution. Any
// palette quantization the physical device needs happens behind this
// interface, not in the compositor.
type Sink interface {
	// Size returns the native resolution the sink expects.
	Size() (width, height int)
	// Push displays one frame. Blocking is acceptable; e-paper refreshes
	// take tens of seconds and the cycle interval is minutes.
	Push(img image.Image) error
}

// PNGSink writes each frame to a file. Useful for developing the pipeline
// without panel hardware.
type PNGSink struct {
	Path   string
	Width  int
	Height int
}

// NewPNGSink returns a sink writing width x height frames to path.
func NewPNGSink(path string, width, height int) *PNGSink {
	return &PNGSink{Path: path, Width: width, Height: height}
}

func (s *PNGSink) Size() (int, int) { return s.Width, s.Height }

// Push writes the frame with replace semantics: encode to a temp file in
// the target directory, then rename, so a watcher never observes a partial
// image.
func (s *PNGSink) Push(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.Width || b.Dy() != s.Height {
		return fmt.Errorf("display: frame is %dx%d, sink expects %dx%d",
			b.Dx(), b.Dy(), s.Width, s.Height)
	}
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()
	if err := png.Encode(tmp, img); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.Path)
}
