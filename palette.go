package pixelcanvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Palette maps color ids to opaque RGBA colors.
type Palette []color.RGBA

// ParsePalette parses palette entries written as RRGGBB hex (with or without
// a leading '#') or as SVG color names ("crimson", "teal").
func ParsePalette(entries []string) (Palette, error) {
	p := make(Palette, 0, len(entries))
	for i, e := range entries {
		c, err := parseColor(e)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		p = append(p, c)
	}
	return p, nil
}

func parseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

// Color returns the color for id and whether id is in range.
func (p Palette) Color(id int) (color.RGBA, bool) {
	if id < 0 || id >= len(p) {
		return color.RGBA{}, false
	}
	return p[id], true
}

// Inverse returns 255-channel for R, G and B, keeping alpha.
func Inverse(c color.RGBA) color.RGBA {
	return color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A}
}

// Hex formats c as RRGGBBAA.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
