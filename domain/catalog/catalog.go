// Package catalog enumerates the eligible images in the photo directory and
// fingerprints the directory state so the display queue can detect changes.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one eligible image file. Name is relative to the scanned
// directory and is the identifier the queue persists.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// List returns the eligible images in dir sorted by name, together with a
// signature of the directory state. Two directory states with identical
// file sets, sizes and mtimes produce equal signatures; any addition,
// removal, rename or content change produces a different one.
//
// Only regular files with an approved image extension are included;
// subdirectories and other files are skipped. A missing or unreadable
// directory is an error, scoped to the current cycle.
func List(dir string) ([]Entry, string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("catalog: reading %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if de.IsDir() || !IsImageFile(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Raced with a delete; treat the file as absent.
			if os.IsNotExist(err) {
				continue
			}
			return nil, "", fmt.Errorf("catalog: stat %s: %w", de.Name(), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, Signature(entries), nil
}

// Signature derives the change-detection fingerprint from sorted entries.
func Signature(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", e.Name, e.Size, e.ModTime.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsImageFile reports whether name carries an approved image extension.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}
