package color

import (
	"fmt"
	"strconv"
	"strings"
)

// named covers the color keywords that show up in computed styles in
// practice. Unknown names simply fail to parse and the caller skips the
// element.
var named = map[string]RGB{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"silver":  {192, 192, 192},
	"maroon":  {128, 0, 0},
	"navy":    {0, 0, 128},
	"olive":   {128, 128, 0},
	"purple":  {128, 0, 128},
	"teal":    {0, 128, 128},
	"orange":  {255, 165, 0},
}

// Parse parses a CSS color string: #rgb, #rrggbb, #rrggbbaa, rgb()/rgba(),
// hsl()/hsla(), or a named color. Returns ok=false for anything it cannot
// handle, including fully transparent values; it never panics.
func Parse(s string) (RGB, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" || s == "none" || s == "currentcolor" || s == "inherit" {
		return RGB{}, false
	}

	if c, ok := named[s]; ok {
		return c, true
	}

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	case strings.HasPrefix(s, "hsl"):
		return parseHSLFunc(s)
	}
	return RGB{}, false
}

// IsTransparent reports whether s denotes a fully transparent color, either
// the keyword or an rgba()/hsla() value with zero alpha. Unparseable strings
// are not considered transparent.
func IsTransparent(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" {
		return true
	}
	if strings.HasPrefix(s, "rgba") || strings.HasPrefix(s, "hsla") {
		parts := funcArgs(s)
		if len(parts) == 4 {
			if a, err := strconv.ParseFloat(parts[3], 64); err == nil && a == 0 {
				return true
			}
		}
	}
	return false
}

// Format renders c as a CSS hex string.
func Format(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// FormatHSL renders c as a CSS hsl() function string.
func FormatHSL(c HSL) string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", c.H, c.S, c.L)
}

func parseHex(hex string) (RGB, bool) {
	switch len(hex) {
	case 3:
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6:
	case 8:
		// Zero alpha parses as no color at all.
		if a, err := strconv.ParseUint(hex[6:8], 16, 8); err != nil || a == 0 {
			return RGB{}, false
		}
		hex = hex[:6]
	default:
		return RGB{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{uint8(v >> 16), uint8(v >> 8 & 0xff), uint8(v & 0xff)}, true
}

func parseRGBFunc(s string) (RGB, bool) {
	parts := funcArgs(s)
	if len(parts) < 3 {
		return RGB{}, false
	}
	if len(parts) == 4 {
		if a, err := strconv.ParseFloat(parts[3], 64); err != nil || a == 0 {
			return RGB{}, false
		}
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		p := parts[i]
		if strings.HasSuffix(p, "%") {
			pct, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil {
				return RGB{}, false
			}
			ch[i] = round8(clamp01(pct/100) * 255)
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return RGB{}, false
		}
		ch[i] = round8(v)
	}
	return RGB{ch[0], ch[1], ch[2]}, true
}

func parseHSLFunc(s string) (RGB, bool) {
	parts := funcArgs(s)
	if len(parts) < 3 {
		return RGB{}, false
	}
	if len(parts) == 4 {
		if a, err := strconv.ParseFloat(parts[3], 64); err != nil || a == 0 {
			return RGB{}, false
		}
	}

	h, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "deg"), 64)
	if err != nil {
		return RGB{}, false
	}
	sat, err := strconv.ParseFloat(strings.TrimSuffix(parts[1], "%"), 64)
	if err != nil {
		return RGB{}, false
	}
	l, err := strconv.ParseFloat(strings.TrimSuffix(parts[2], "%"), 64)
	if err != nil {
		return RGB{}, false
	}
	return HSLToRGB(HSL{H: h, S: sat, L: l}), true
}

// funcArgs extracts the comma- or space-separated arguments of a CSS
// functional notation like rgb(1, 2, 3) or rgb(1 2 3 / 0.5).
func funcArgs(s string) []string {
	open := strings.IndexByte(s, '(')
	close := strings.LastIndexByte(s, ')')
	if open < 0 || close <= open {
		return nil
	}
	inner := s[open+1 : close]
	inner = strings.ReplaceAll(inner, "/", " ")
	inner = strings.ReplaceAll(inner, ",", " ")
	return strings.Fields(inner)
}
