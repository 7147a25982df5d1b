// Package render turns a source photo into the final panel raster: cover
// resize with center crop, presentation adjustments, and the date/elapsed
// overlay at a randomly chosen corner.
package render

import (
	"image"
	"image/draw"
	"log/slog"
	"math/rand"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/soocke/inky-frame-go/config"
	"github.com/soocke/inky-frame-go/domain/photo"
)

type corner int

const (
	topLeft corner = iota
	topRight
	bottomLeft
	bottomRight
	cornerCount
)

// Compositor renders display frames. Not safe for concurrent use; the
// frame cycle is single-flow by design.
type Compositor struct {
	width, height     int
	margin            int
	backgroundPadding int
	textPadding       int
	saturation        float64
	contrast          float64

	dateFace    font.Face
	elapsedFace font.Face

	rng    *rand.Rand
	logger *slog.Logger
}

// NewCompositor builds a Compositor from the configured dimensions, fonts
// and adjustments. An invalid font path degrades to the built-in face with
// a warning; construction never fails because of fonts.
func NewCompositor(cfg *config.Config, rng *rand.Rand, logger *slog.Logger) *Compositor {
	c := &Compositor{
		width:             cfg.Width,
		height:            cfg.Height,
		margin:            cfg.Margin,
		backgroundPadding: cfg.BackgroundPadding,
		textPadding:       cfg.TextPadding,
		saturation:        cfg.Saturation,
		contrast:          cfg.Contrast,
		rng:               rng,
		logger:            logger,
	}
	var err error
	c.dateFace, err = loadFace(cfg.FontPath, cfg.DateFontSize)
	if err != nil {
		logger.Warn("configured font unusable, falling back to built-in",
			slog.String("font_path", cfg.FontPath), slog.String("err", err.Error()))
		c.dateFace = builtinFace(cfg.DateFontSize)
	}
	c.elapsedFace, err = loadFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		c.elapsedFace = builtinFace(cfg.FontSize)
	}
	return c
}

// Render produces the final raster for one display cycle. The output
// always has the panel dimensions regardless of the source aspect ratio:
// the photo is scaled to fully cover the target and center-cropped, never
// letterboxed or distorted.
func (c *Compositor) Render(src image.Image, rec photo.CaptureRecord, now time.Time) *image.NRGBA {
	img := imaging.Fill(src, c.width, c.height, imaging.Center, imaging.Lanczos)
	if c.saturation != 1.0 {
		img = imaging.AdjustSaturation(img, (c.saturation-1)*100)
	}
	if c.contrast != 1.0 {
		img = imaging.AdjustContrast(img, (c.contrast-1)*100)
	}
	c.drawOverlay(img, rec, now)
	return img
}

// drawOverlay composes the text block and paints it over a white plate so
// legibility does not depend on the underlying photo.
func (c *Compositor) drawOverlay(img *image.NRGBA, rec photo.CaptureRecord, now time.Time) {
	type line struct {
		text string
		face font.Face
	}
	lines := []line{{photo.FormatDate(rec), c.dateFace}}
	if rec.HasTimestamp() {
		lines = append(lines, line{photo.FormatElapsed(rec.Taken, now), c.elapsedFace})
	}

	blockW, blockH := 0, 0
	heights := make([]int, len(lines))
	for i, l := range lines {
		d := font.Drawer{Face: l.face}
		if w := d.MeasureString(l.text).Ceil(); w > blockW {
			blockW = w
		}
		m := l.face.Metrics()
		heights[i] = (m.Ascent + m.Descent).Ceil()
		blockH += heights[i]
		if i > 0 {
			blockH += c.textPadding
		}
	}

	cn := corner(c.rng.Intn(int(cornerCount)))
	plate := overlayRect(c.width, c.height, blockW, blockH, c.margin, c.backgroundPadding, cn)
	draw.Draw(img, plate, image.White, image.Point{}, draw.Src)

	x := plate.Min.X + c.backgroundPadding
	y := plate.Min.Y + c.backgroundPadding
	for i, l := range lines {
		ascent := l.face.Metrics().Ascent.Ceil()
		d := font.Drawer{
			Dst:  img,
			Src:  image.Black,
			Face: l.face,
			Dot:  fixed.P(x, y+ascent),
		}
		d.DrawString(l.text)
		y += heights[i] + c.textPadding
	}
}

// overlayRect anchors the background plate for a text block of blockW x
// blockH at the given corner, honoring the edge margin, and clamps the
// result inside the raster so the overlay never extends past its bounds.
func overlayRect(imgW, imgH, blockW, blockH, margin, pad int, cn corner) image.Rectangle {
	w := blockW + 2*pad
	h := blockH + 2*pad

	var x, y int
	switch cn {
	case topLeft:
		x, y = margin, margin
	case topRight:
		x, y = imgW-margin-w, margin
	case bottomLeft:
		x, y = margin, imgH-margin-h
	case bottomRight:
		x, y = imgW-margin-w, imgH-margin-h
	}

	r := image.Rect(x, y, x+w, y+h)
	return r.Intersect(image.Rect(0, 0, imgW, imgH))
}
