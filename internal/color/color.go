// Package color implements the color math the theming strategies are built
// on: RGB/HSL conversions, WCAG relative luminance and contrast ratio, and a
// rough LCH projection used to lift foreground lightness when a contrast
// floor is not met.
//
// All functions are pure and total over their domains. Out-of-range inputs
// are clamped, never rejected.
package color

import "math"

// RGB is an 8-bit-per-channel sRGB color.
type RGB struct {
	R, G, B uint8
}

// HSL holds hue in degrees [0,360) and saturation/lightness as percentages
// [0,100].
type HSL struct {
	H, S, L float64
}

// LCH is a simplified lightness/chroma/hue projection. L is a gamma-less
// luma percentage, not CIE L*; it is only meaningful for relative lightness
// adjustments, never for hue-accurate reproduction.
type LCH struct {
	L, C, H float64
}

// White and Black are the contrast anchors.
var (
	White = RGB{255, 255, 255}
	Black = RGB{0, 0, 0}
)

// RGBToHSL converts an RGB color to HSL.
func RGBToHSL(c RGB) HSL {
	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	if maxC == minC {
		return HSL{H: 0, S: 0, L: l * 100}
	}

	d := maxC - minC
	var s float64
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	var h float64
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60

	return HSL{H: h, S: s * 100, L: l * 100}
}

// HSLToRGB converts an HSL color to RGB. Inputs are clamped to their valid
// ranges first.
func HSLToRGB(c HSL) RGB {
	h := math.Mod(math.Mod(c.H, 360)+360, 360)
	s := clamp01(c.S / 100)
	l := clamp01(c.L / 100)

	if s == 0 {
		v := round8(l * 255)
		return RGB{v, v, v}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r := hueToRGB(p, q, h/360+1.0/3.0)
	g := hueToRGB(p, q, h/360)
	b := hueToRGB(p, q, h/360-1.0/3.0)

	return RGB{round8(r * 255), round8(g * 255), round8(b * 255)}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

// RelativeLuminance returns the WCAG 2.0 relative luminance of c, in [0,1].
func RelativeLuminance(c RGB) float64 {
	r := linearize(float64(c.R) / 255.0)
	g := linearize(float64(c.G) / 255.0)
	b := linearize(float64(c.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// linearize converts an sRGB channel to linear light per the WCAG piecewise
// formula.
func linearize(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// ContrastRatio returns the WCAG contrast ratio between two colors, in
// [1,21]. Symmetric in argument order.
func ContrastRatio(a, b RGB) float64 {
	l1 := RelativeLuminance(a)
	l2 := RelativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// ToApproxLCH projects c into the simplified LCH space. L is the gamma-less
// luma percentage; C and H are carried over from HSL.
func ToApproxLCH(c RGB) LCH {
	hsl := RGBToHSL(c)
	luma := (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255.0
	return LCH{L: luma * 100, C: hsl.S, H: hsl.H}
}

// FromApproxLCH reconstructs an RGB color whose luma approximates lch.L,
// preserving hue and chroma. The HSL lightness that yields the target luma
// is found by bisection; eight rounds bring the error under one luma step.
func FromApproxLCH(lch LCH) RGB {
	target := clamp01(lch.L / 100)
	lo, hi := 0.0, 100.0
	var out RGB
	for i := 0; i < 8; i++ {
		mid := (lo + hi) / 2
		out = HSLToRGB(HSL{H: lch.H, S: lch.C, L: mid})
		luma := (0.2126*float64(out.R) + 0.7152*float64(out.G) + 0.0722*float64(out.B)) / 255.0
		if luma < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round8(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
