package scene

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// FallbackColor is used for blocks whose color string cannot be parsed.
const FallbackColor = "#555555"

// ParseColor parses a CSS color string: #RGB, #RRGGBB, rgb(r,g,b) or
// rgba(r,g,b,a) with a in [0,1].
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, true
	}

	var args string
	var wantAlpha bool
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		args, wantAlpha = s[len("rgba("):len(s)-1], true
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		args = s[len("rgb(") : len(s)-1]
	default:
		return color.NRGBA{}, false
	}

	parts := strings.Split(args, ",")
	if (wantAlpha && len(parts) != 4) || (!wantAlpha && len(parts) != 3) {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := range 3 {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(v)
	}
	alpha := uint8(255)
	if wantAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, false
		}
		alpha = uint8(a*255 + 0.5)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

// ColorOrFallback parses s and falls back to FallbackColor when s is invalid.
func ColorOrFallback(s string) color.NRGBA {
	if c, ok := ParseColor(s); ok {
		return c
	}
	c, _ := ParseColor(FallbackColor)
	return c
}
