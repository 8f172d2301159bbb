package metadata

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pngChunk struct {
	typ  string
	data []byte
}

func buildPNG(chunks ...pngChunk) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	for _, c := range chunks {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(c.data)))
		buf.WriteString(c.typ)
		buf.Write(c.data)
		buf.Write([]byte{0, 0, 0, 0}) // CRC, not validated by the reader
	}
	return buf.Bytes()
}

func tEXtPayload(keyword, text string) []byte {
	return append(append([]byte(keyword), 0), []byte(text)...)
}

// keyword \0 compFlag compMethod lang \0 translated \0 text
func iTXtPayload(keyword string, compressed bool, text string) []byte {
	payload := append([]byte(keyword), 0)
	if compressed {
		payload = append(payload, 1, 0)
	} else {
		payload = append(payload, 0, 0)
	}
	payload = append(payload, []byte("en")...)
	payload = append(payload, 0)
	payload = append(payload, 0) // empty translated keyword
	return append(payload, []byte(text)...)
}

func TestReadPNGText(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected string
		ok       bool
	}{
		{
			name: "No textual chunks",
			data: buildPNG(
				pngChunk{"IHDR", make([]byte, 13)},
				pngChunk{"IDAT", []byte{1, 2, 3}},
				pngChunk{"IEND", nil},
			),
			ok: false,
		},
		{
			name: "Single tEXt chunk",
			data: buildPNG(
				pngChunk{"tEXt", tEXtPayload("parameters", "a cat\nSteps: 20")},
			),
			expected: "a cat\nSteps: 20",
			ok:       true,
		},
		{
			name: "tEXt without NUL keeps whole payload",
			data: buildPNG(
				pngChunk{"tEXt", []byte("no keyword here")},
			),
			expected: "no keyword here",
			ok:       true,
		},
		{
			name: "Multiple chunks joined in container order",
			data: buildPNG(
				pngChunk{"tEXt", tEXtPayload("prompt", "first")},
				pngChunk{"IDAT", []byte{9, 9}},
				pngChunk{"tEXt", tEXtPayload("extra", "second")},
			),
			expected: "first\nsecond",
			ok:       true,
		},
		{
			name: "iTXt uncompressed",
			data: buildPNG(
				pngChunk{"iTXt", iTXtPayload("parameters", false, "masterpiece")},
			),
			expected: "masterpiece",
			ok:       true,
		},
		{
			name: "Compressed iTXt is skipped",
			data: buildPNG(
				pngChunk{"iTXt", iTXtPayload("parameters", true, "\x78\x9c\x01\x02")},
			),
			ok: false,
		},
		{
			name: "Wrong signature",
			data: []byte("definitely not a png file, at all"),
			ok:   false,
		},
		{
			name: "Truncated after signature",
			data: append(append([]byte{}, pngSignature...), 1, 2, 3),
			ok:   false,
		},
		{
			name: "Declared length runs past buffer end",
			data: func() []byte {
				// valid chunk, then a chunk claiming more data than present
				data := buildPNG(pngChunk{"tEXt", tEXtPayload("parameters", "kept")})
				data = append(data, 0x00, 0x00, 0xFF, 0xFF) // absurd length
				data = append(data, []byte("tEXt")...)
				data = append(data, 1, 2, 3) // far fewer bytes than declared
				return data
			}(),
			expected: "kept",
			ok:       true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, ok := ReadPNGText(tc.data)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, text)
			}
		})
	}
}

func TestReadPNGTextRoundTrip(t *testing.T) {
	data := buildPNG(pngChunk{"tEXt", tEXtPayload("parameters", "a cat, masterpiece\nSteps: 20, Seed: 42")})
	text, ok := ReadPNGText(data)
	require.True(t, ok)

	meta := ParseParameters(text)
	require.NotNil(t, meta)
	assert.Equal(t, "a cat, masterpiece", meta.Prompt)
	assert.Equal(t, 20, meta.Steps)
	assert.Equal(t, "42", meta.Seed)
}
