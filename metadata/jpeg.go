package metadata

import (
	"strings"
	"unicode/utf8"

	"github.com/miraveja/miraveja/util/stringutil"
)

// JPEG marker ids inspected for embedded text.
const (
	markerCOM   = 0xFE // comment
	markerAPP1  = 0xE1 // commonly XMP
	markerAPP13 = 0xED // commonly IPTC / Photoshop
	markerEOI   = 0xD9
)

// Minimum fraction of printable ASCII chars for a decoded segment to be kept
// when it carries none of the known metadata container markers.
const printableRatioThreshold = 0.6

// ReadJPEGText walks the marker segments of a JPEG buffer and returns the
// text-like payloads of COM / APP1 / APP13 segments joined with newlines, in
// segment order. ok is false if nothing was kept. Malformed or truncated
// structures stop the walk early rather than failing.
func ReadJPEGText(data []byte) (text string, ok bool) {
	var texts []string
	offset := len(jpegSignature) // skip SOI
	for offset+2 <= len(data) {
		if data[offset] != 0xFF {
			// Unexpected byte where a marker should be. Stop gracefully.
			break
		}
		marker := data[offset+1]
		if marker == markerEOI {
			break
		}
		if marker >= 0xD0 && marker <= 0xD9 {
			// Standalone marker, no length field.
			offset += 2
			continue
		}
		if offset+4 > len(data) {
			break
		}
		// Segment length field includes itself.
		length := int(data[offset+2])<<8 | int(data[offset+3])
		if length < 2 || offset+2+length > len(data) {
			break
		}
		payload := data[offset+4 : offset+2+length]

		switch marker {
		case markerCOM, markerAPP1, markerAPP13:
			if t, keep := segmentText(payload); keep {
				texts = append(texts, t)
			}
		}
		offset += 2 + length
	}

	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, "\n"), true
}

// segmentText decodes payload as UTF-8 and decides whether it looks like an
// embedded metadata text rather than binary noise. Invalid UTF-8 skips the
// segment; the walk continues.
func segmentText(payload []byte) (string, bool) {
	if !utf8.Valid(payload) {
		return "", false
	}
	decoded := stringutil.StringFromBytes(payload)
	if strings.Contains(decoded, "<x:xmpmeta") || strings.Contains(decoded, "parameters") {
		return decoded, true
	}
	if stringutil.PrintableRatio(decoded) > printableRatioThreshold {
		return decoded, true
	}
	return "", false
}
