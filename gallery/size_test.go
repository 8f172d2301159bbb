package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Size
		wantErr  bool
	}{
		{name: "Plain", input: "512x768", expected: Size{512, 768}},
		{name: "Upper case separator", input: "1024X1024", expected: Size{1024, 1024}},
		{name: "Surrounding whitespace", input: " 640 x 480 ", expected: Size{640, 480}},
		{name: "Missing separator", input: "512", wantErr: true},
		{name: "Non-numeric width", input: "widex768", wantErr: true},
		{name: "Non-numeric height", input: "512xtall", wantErr: true},
		{name: "Zero dimension", input: "0x768", wantErr: true},
		{name: "Negative dimension", input: "512x-768", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := ParseSize(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, size)
		})
	}
}

func TestSizeDerivedProperties(t *testing.T) {
	landscape := Size{Width: 1920, Height: 1080}
	assert.Equal(t, "1920x1080", landscape.String())
	assert.InDelta(t, 16.0/9.0, landscape.AspectRatio(), 0.001)
	assert.InDelta(t, 2.0736, landscape.MegaPixels(), 0.0001)
	assert.True(t, landscape.IsLandscape())
	assert.False(t, landscape.IsPortrait())

	portrait := Size{Width: 512, Height: 768}
	assert.True(t, portrait.IsPortrait())
	assert.False(t, portrait.IsLandscape())

	square := Size{Width: 1024, Height: 1024}
	assert.False(t, square.IsLandscape())
	assert.False(t, square.IsPortrait())

	assert.Zero(t, Size{}.AspectRatio())
}
