package style

import (
	"math"
	"strconv"
	"strings"
)

// Color is an opaque RGB color with channels in [0, 1].
type Color struct {
	R, G, B float64
}

var (
	Black = Color{}
	White = Color{R: 1, G: 1, B: 1}
)

// ParseHex parses "#RRGGBB" or "RRGGBB", case-insensitively. Anything else
// yields Black.
func ParseHex(s string) Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Black
	}
	return Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}

// RGB255 returns the color as 8-bit channels.
func (c Color) RGB255() (r, g, b int) {
	return channel(c.R), channel(c.G), channel(c.B)
}

func channel(v float64) int {
	return int(math.Round(math.Min(math.Max(v, 0), 1) * 255))
}
