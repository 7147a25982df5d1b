// Package photo derives per-image presentation data: the embedded capture
// timestamp and the human phrase for how long ago it was taken.
package photo

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureRecord carries the capture timestamp of one image, when present.
// It is computed fresh for each display cycle and never cached.
type CaptureRecord struct {
	Taken  time.Time
	Source Source
}

// Source tells where a CaptureRecord's timestamp came from.
type Source string

const (
	SourceMetadata    Source = "metadata"
	SourceUnavailable Source = "unavailable"
)

// HasTimestamp reports whether the record holds a usable capture time.
func (r CaptureRecord) HasTimestamp() bool {
	return r.Source == SourceMetadata && !r.Taken.IsZero()
}

// Extract reads the embedded capture timestamp of the image at path.
// Metadata absence is an expected state, not an error: unreadable files,
// formats without EXIF (plain PNGs) and parse failures all yield an
// unavailable record.
func Extract(path string) CaptureRecord {
	f, err := os.Open(path)
	if err != nil {
		return CaptureRecord{Source: SourceUnavailable}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return CaptureRecord{Source: SourceUnavailable}
	}
	// DateTimeOriginal with DateTime fallback, local time.
	taken, err := x.DateTime()
	if err != nil || taken.IsZero() {
		return CaptureRecord{Source: SourceUnavailable}
	}
	return CaptureRecord{Taken: taken, Source: SourceMetadata}
}
