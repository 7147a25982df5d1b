package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// loadFace builds a font face of the given point size. An empty path
// selects the built-in Go Regular face; a configured path that cannot be
// read or parsed is reported so the caller can warn and fall back.
func loadFace(path string, size float64) (font.Face, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("render: reading font %s: %w", path, err)
		}
		data = b
	}
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("render: parsing font %s: %w", path, err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: building face: %w", err)
	}
	return face, nil
}

// builtinFace returns the embedded Go Regular face. goregular always
// parses; a failure here is a programming error.
func builtinFace(size float64) font.Face {
	face, err := loadFace("", size)
	if err != nil {
		panic(err)
	}
	return face
}
