package gallery

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is the pixel dimensions of an image, parsed from the conventional
// "WIDTHxHEIGHT" string form.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func ParseSize(s string) (Size, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("malformed size string %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Size{}, fmt.Errorf("malformed size string %q: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Size{}, fmt.Errorf("malformed size string %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return Size{}, fmt.Errorf("malformed size string %q: non-positive dimension", s)
	}
	return Size{Width: width, Height: height}, nil
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// AspectRatio is width / height.
func (s Size) AspectRatio() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

func (s Size) MegaPixels() float64 {
	return float64(s.Width*s.Height) / 1_000_000
}

func (s Size) IsLandscape() bool {
	return s.Width > s.Height
}

func (s Size) IsPortrait() bool {
	return s.Height > s.Width
}
