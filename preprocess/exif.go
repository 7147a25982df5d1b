package preprocess

import (
	"encoding/binary"
	"os"
)

// JPEG markers.
const (
	markerSOI  = 0xD8
	markerAPP1 = 0xE1
	markerSOS  = 0xDA
)

var exifHeader = []byte("Exif\x00\x00")

// exifSegmentFromFile returns the complete APP1 Exif segment (marker and
// length included) of the JPEG at path, or nil when the file is not a JPEG
// or carries no EXIF. Go's jpeg encoder drops metadata, so the segment is
// spliced back into the re-encoded output verbatim.
func exifSegmentFromFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return exifSegment(data)
}

// exifSegment scans the segment list of a JPEG byte stream for the APP1
// Exif segment.
func exifSegment(data []byte) []byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return nil
		}
		marker := data[i+1]
		if marker == markerSOS {
			// Entropy-coded data follows; no EXIF past this point.
			return nil
		}
		length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		end := i + 2 + length
		if length < 2 || end > len(data) {
			return nil
		}
		if marker == markerAPP1 {
			payload := data[i+4 : end]
			if len(payload) >= len(exifHeader) && string(payload[:len(exifHeader)]) == string(exifHeader) {
				seg := make([]byte, end-i)
				copy(seg, data[i:end])
				return seg
			}
		}
		i = end
	}
	return nil
}

// neutralizeOrientation returns a copy of the APP1 segment with the TIFF
// Orientation tag rewritten to 1 (upright). The pipeline bakes the
// orientation into the pixels when decoding, so a carried-over tag other
// than 1 would make readers rotate the photo a second time. A segment
// that cannot be parsed is returned unchanged.
func neutralizeOrientation(segment []byte) []byte {
	const tiffStart = 4 + 6 // marker+length, then "Exif\x00\x00"
	if len(segment) < tiffStart+8 {
		return segment
	}
	out := make([]byte, len(segment))
	copy(out, segment)
	tiff := out[tiffStart:]

	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return segment
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return segment
	}

	ifd := int(order.Uint32(tiff[4:8]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return segment
	}
	count := int(order.Uint16(tiff[ifd : ifd+2]))
	for i := 0; i < count; i++ {
		entry := ifd + 2 + i*12
		if entry+12 > len(tiff) {
			return segment
		}
		const tagOrientation = 0x0112
		const typeShort = 3
		if order.Uint16(tiff[entry:entry+2]) == tagOrientation &&
			order.Uint16(tiff[entry+2:entry+4]) == typeShort &&
			order.Uint32(tiff[entry+4:entry+8]) == 1 {
			order.PutUint16(tiff[entry+8:entry+10], 1)
			return out
		}
	}
	return out
}

// withExif inserts the given APP1 segment directly after the SOI marker of
// an encoded JPEG.
func withExif(encoded, segment []byte) []byte {
	if len(encoded) < 2 || encoded[0] != 0xFF || encoded[1] != markerSOI || len(segment) == 0 {
		return encoded
	}
	out := make([]byte, 0, len(encoded)+len(segment))
	out = append(out, encoded[:2]...)
	out = append(out, segment...)
	out = append(out, encoded[2:]...)
	return out
}
