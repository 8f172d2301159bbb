package metadata

import "bytes"

// Format is the container format of an uploaded image buffer.
type Format string

const (
	FormatPNG         Format = "png"
	FormatJPEG        Format = "jpeg"
	FormatUnsupported Format = "unsupported"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
var jpegSignature = []byte{0xFF, 0xD8} // SOI marker

// Classify determines the container format of data by its magic bytes.
// Buffers shorter than every known signature classify as FormatUnsupported;
// it never reads out of bounds.
func Classify(data []byte) Format {
	if bytes.HasPrefix(data, pngSignature) {
		return FormatPNG
	}
	if bytes.HasPrefix(data, jpegSignature) {
		return FormatJPEG
	}
	return FormatUnsupported
}
