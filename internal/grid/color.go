package grid

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is one LED colour, each channel 0-255.
type RGB [3]uint8

// Off is the colour of an unlit LED.
var Off = RGB{0, 0, 0}

// IsOn reports whether any channel is lit.
func (c RGB) IsOn() bool {
	return int(c[0])+int(c[1])+int(c[2]) != 0
}

// Hex renders the colour as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Colorful converts to a go-colorful colour for blending.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

// FromColorful clamps a go-colorful colour back to 8-bit channels.
func FromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

// ParseHex parses "#rrggbb", "#rgb" or the same without the leading '#'.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Off, fmt.Errorf("empty colour")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return Off, fmt.Errorf("invalid colour %q: want #rgb or #rrggbb", s)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return Off, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return FromColorful(c), nil
}

// Toggle returns the colour an LED takes when tapped: off when lit,
// otherwise the given default colour.
func Toggle(current, defaultColor RGB) RGB {
	if current.IsOn() {
		return Off
	}
	return defaultColor
}
