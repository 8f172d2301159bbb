package metadata

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/miraveja/miraveja/util/stringutil"
)

// ReadPNGText scans the tEXt / iTXt chunks of a PNG buffer without decoding
// the image and returns their text payloads joined with newlines, in chunk
// order. ok is false if no textual chunk was found or the signature does not
// match. Truncated or malformed chunk structures stop the walk early; whatever
// was collected up to that point is still returned.
func ReadPNGText(data []byte) (text string, ok bool) {
	// Re-validate the signature instead of trusting the caller.
	if !bytes.HasPrefix(data, pngSignature) {
		return "", false
	}

	var texts []string
	offset := len(pngSignature)
	for {
		// length (4) + type (4) + crc (4)
		if offset+12 > len(data) {
			break
		}
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		chunkType := string(data[offset+4 : offset+8])
		if offset+8+length+4 > len(data) {
			// Declared length runs past the buffer end. Stop silently.
			break
		}
		payload := data[offset+8 : offset+8+length]

		switch chunkType {
		case "tEXt":
			// keyword \0 text
			parts := bytes.SplitN(payload, []byte{0}, 2)
			if len(parts) == 2 {
				texts = append(texts, stringutil.StringFromBytes(parts[1]))
			} else {
				texts = append(texts, stringutil.StringFromBytes(payload))
			}
		case "iTXt":
			if t, keep := iTXtPayloadText(payload); keep {
				texts = append(texts, t)
			}
		}
		// CRC is skipped, not validated.
		offset += 8 + length + 4
	}

	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, "\n"), true
}

// iTXt layout: keyword \0 compressionFlag compressionMethod languageTag \0
// translatedKeyword \0 text. Splitting on the last NUL and keeping the rest
// recovers the text without parsing the header fields. Compressed chunks
// (compressionFlag set) are skipped: inflating them is not supported, and the
// last-NUL heuristic would yield binary garbage.
func iTXtPayloadText(payload []byte) (string, bool) {
	firstNul := bytes.IndexByte(payload, 0)
	if firstNul >= 0 && firstNul+1 < len(payload) && payload[firstNul+1] != 0 {
		return "", false
	}
	lastNul := bytes.LastIndexByte(payload, 0)
	if lastNul < 0 {
		return stringutil.StringFromBytes(payload), true
	}
	return stringutil.StringFromBytes(payload[lastNul+1:]), true
}
