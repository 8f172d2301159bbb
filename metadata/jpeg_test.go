package metadata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jpegSegment struct {
	marker  byte
	payload []byte // nil for standalone markers
}

func buildJPEG(segments ...jpegSegment) []byte {
	var buf bytes.Buffer
	buf.Write(jpegSignature)
	for _, s := range segments {
		buf.WriteByte(0xFF)
		buf.WriteByte(s.marker)
		if s.payload != nil {
			length := len(s.payload) + 2 // length field includes itself
			buf.WriteByte(byte(length >> 8))
			buf.WriteByte(byte(length))
			buf.Write(s.payload)
		}
	}
	return buf.Bytes()
}

func TestReadJPEGText(t *testing.T) {
	binaryNoise := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}

	testCases := []struct {
		name     string
		data     []byte
		expected string
		ok       bool
	}{
		{
			name: "COM segment with parameters keyword",
			data: buildJPEG(
				jpegSegment{marker: markerCOM, payload: []byte("parameters: a cat\nSteps: 20")},
				jpegSegment{marker: markerEOI},
			),
			expected: "parameters: a cat\nSteps: 20",
			ok:       true,
		},
		{
			name: "APP1 xmp container",
			data: buildJPEG(
				jpegSegment{marker: markerAPP1, payload: []byte(`<x:xmpmeta xmlns:x="adobe:ns:meta/">prompt</x:xmpmeta>`)},
				jpegSegment{marker: markerEOI},
			),
			expected: `<x:xmpmeta xmlns:x="adobe:ns:meta/">prompt</x:xmpmeta>`,
			ok:       true,
		},
		{
			name: "Mostly printable text passes the ratio filter",
			data: buildJPEG(
				jpegSegment{marker: markerCOM, payload: []byte("just a plain comment blob")},
			),
			expected: "just a plain comment blob",
			ok:       true,
		},
		{
			name: "Binary noise in COM is filtered out",
			data: buildJPEG(
				jpegSegment{marker: markerCOM, payload: binaryNoise},
			),
			ok: false,
		},
		{
			name: "Invalid utf-8 segment is skipped, walk continues",
			data: buildJPEG(
				jpegSegment{marker: markerAPP1, payload: []byte{0xFF, 0xFE, 0xFD}},
				jpegSegment{marker: markerCOM, payload: []byte("still here, parameters")},
			),
			expected: "still here, parameters",
			ok:       true,
		},
		{
			name: "Non-inspected markers are skipped by length",
			data: buildJPEG(
				jpegSegment{marker: 0xE0, payload: []byte("JFIF\x00\x01\x02")},
				jpegSegment{marker: markerCOM, payload: []byte("parameters here")},
			),
			expected: "parameters here",
			ok:       true,
		},
		{
			name: "Standalone restart markers have no length field",
			data: buildJPEG(
				jpegSegment{marker: 0xD0},
				jpegSegment{marker: markerCOM, payload: []byte("after restart, parameters")},
			),
			expected: "after restart, parameters",
			ok:       true,
		},
		{
			name: "EOI ends the walk",
			data: buildJPEG(
				jpegSegment{marker: markerEOI},
				jpegSegment{marker: markerCOM, payload: []byte("parameters unreachable")},
			),
			ok: false,
		},
		{
			name: "Non-marker byte stops gracefully",
			data: append(buildJPEG(), 0x12, 0x34),
			ok:   false,
		},
		{
			name: "Length overrunning buffer stops gracefully",
			data: func() []byte {
				data := buildJPEG(jpegSegment{marker: markerCOM, payload: []byte("kept, parameters")})
				data = append(data, 0xFF, markerCOM, 0xFF, 0xFF, 'x') // declared 65535, almost nothing present
				return data
			}(),
			expected: "kept, parameters",
			ok:       true,
		},
		{
			name: "Segments joined in order",
			data: buildJPEG(
				jpegSegment{marker: markerCOM, payload: []byte("first comment text")},
				jpegSegment{marker: markerAPP13, payload: []byte("second comment text")},
			),
			expected: "first comment text\nsecond comment text",
			ok:       true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, ok := ReadJPEGText(tc.data)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, text)
			}
		})
	}
}
