// Package preprocess batch-converts raw photos into panel-ready images:
// cover-resized, center-cropped JPEGs at the panel resolution, with the
// source EXIF carried over so the slideshow can still read capture dates.
// Perceptual near-duplicates are skipped so one burst of shots does not
// fill a pass with the same scene.
package preprocess

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/nfnt/resize"
	"github.com/schollz/progressbar/v3"

	"github.com/soocke/inky-frame-go/domain/catalog"
)

// Options configures one preprocessing run.
type Options struct {
	RawDir string
	OutDir string
	Width  int
	Height int
	// Quality is the JPEG quality of the output files.
	Quality int
	// DedupeDistance is the maximum perceptual hash distance at which two
	// photos count as the same scene. Negative disables deduplication.
	DedupeDistance int
}

// Result summarises a run.
type Result struct {
	Processed    int
	Skipped      int
	Duplicates   int
	BytesWritten int64
}

// Run processes every eligible image under opts.RawDir into opts.OutDir,
// preserving relative paths. Individual file failures are logged and
// counted, never fatal.
func Run(opts Options, logger *slog.Logger) (Result, error) {
	var res Result
	files, err := findImages(opts.RawDir)
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		logger.Warn("no images found", slog.String("raw_dir", opts.RawDir))
		return res, nil
	}
	if opts.Quality <= 0 {
		opts.Quality = 90
	}

	bar := progressbar.Default(int64(len(files)), "preprocessing")
	var hashes []*goimagehash.ImageHash

	for _, src := range files {
		_ = bar.Add(1)

		img, err := imaging.Open(src, imaging.AutoOrientation(true))
		if err != nil {
			logger.Warn("skipping unreadable image",
				slog.String("file", src), slog.String("err", err.Error()))
			res.Skipped++
			continue
		}

		if opts.DedupeDistance >= 0 {
			// Downscale before hashing; phash only needs coarse structure.
			small := resize.Resize(64, 64, img, resize.Bilinear)
			h, err := goimagehash.PerceptionHash(small)
			if err == nil {
				if isDuplicate(h, hashes, opts.DedupeDistance) {
					logger.Info("skipping near-duplicate", slog.String("file", src))
					res.Duplicates++
					continue
				}
				hashes = append(hashes, h)
			}
		}

		out := imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: opts.Quality}); err != nil {
			logger.Warn("encoding failed", slog.String("file", src), slog.String("err", err.Error()))
			res.Skipped++
			continue
		}
		encoded := buf.Bytes()
		if seg := exifSegmentFromFile(src); seg != nil {
			// The decode above already rotated the pixels upright, so the
			// carried-over Orientation tag must be reset or readers would
			// rotate the photo a second time.
			encoded = withExif(encoded, neutralizeOrientation(seg))
		}

		dst, err := outputPath(opts.RawDir, opts.OutDir, src)
		if err != nil {
			logger.Warn("skipping file outside raw dir", slog.String("file", src))
			res.Skipped++
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return res, fmt.Errorf("preprocess: creating %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, encoded, 0o644); err != nil {
			return res, fmt.Errorf("preprocess: writing %s: %w", dst, err)
		}
		res.Processed++
		res.BytesWritten += int64(len(encoded))
	}

	logger.Info("preprocess complete",
		slog.Int("processed", res.Processed),
		slog.Int("skipped", res.Skipped),
		slog.Int("duplicates", res.Duplicates),
		slog.String("written", humanize.Bytes(uint64(res.BytesWritten))))
	return res, nil
}

// findImages walks dir recursively and returns eligible images in stable
// order.
func findImages(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if catalog.IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("preprocess: scanning %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func isDuplicate(h *goimagehash.ImageHash, seen []*goimagehash.ImageHash, threshold int) bool {
	for _, prev := range seen {
		if d, err := h.Distance(prev); err == nil && d <= threshold {
			return true
		}
	}
	return false
}

// outputPath maps src under rawDir to the same relative location under
// outDir, normalized to a .jpg suffix.
func outputPath(rawDir, outDir, src string) (string, error) {
	rel, err := filepath.Rel(rawDir, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("preprocess: %s not under %s", src, rawDir)
	}
	ext := filepath.Ext(rel)
	rel = strings.TrimSuffix(rel, ext) + ".jpg"
	return filepath.Join(outDir, rel), nil
}
