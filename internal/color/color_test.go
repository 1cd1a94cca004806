package color

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBToHSL(t *testing.T) {
	tests := []struct {
		name string
		in   RGB
		want HSL
	}{
		{name: "black", in: RGB{0, 0, 0}, want: HSL{0, 0, 0}},
		{name: "white", in: RGB{255, 255, 255}, want: HSL{0, 0, 100}},
		{name: "red", in: RGB{255, 0, 0}, want: HSL{0, 100, 50}},
		{name: "green", in: RGB{0, 255, 0}, want: HSL{120, 100, 50}},
		{name: "blue", in: RGB{0, 0, 255}, want: HSL{240, 100, 50}},
		{name: "mid gray", in: RGB{128, 128, 128}, want: HSL{0, 0, 50.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RGBToHSL(tt.in)
			assert.InDelta(t, tt.want.H, got.H, 0.5)
			assert.InDelta(t, tt.want.S, got.S, 0.5)
			assert.InDelta(t, tt.want.L, got.L, 0.5)
		})
	}
}

func TestHSLRoundTrip(t *testing.T) {
	// Round-trip law: hslToRgb(rgbToHsl(x)) == x within rounding tolerance.
	samples := []RGB{
		{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 128, 0},
		{18, 18, 18}, {240, 240, 240}, {33, 150, 243}, {255, 87, 34},
		{128, 128, 128}, {1, 2, 3}, {250, 250, 249}, {7, 99, 200},
	}

	for _, c := range samples {
		got := HSLToRGB(RGBToHSL(c))
		assert.InDelta(t, float64(c.R), float64(got.R), 1, "R of %v", c)
		assert.InDelta(t, float64(c.G), float64(got.G), 1, "G of %v", c)
		assert.InDelta(t, float64(c.B), float64(got.B), 1, "B of %v", c)
	}
}

func TestHSLToRGBClampsInput(t *testing.T) {
	// Out-of-range values clamp instead of wrapping into garbage.
	assert.Equal(t, RGB{255, 255, 255}, HSLToRGB(HSL{H: 0, S: 0, L: 150}))
	assert.Equal(t, RGB{0, 0, 0}, HSLToRGB(HSL{H: 720, S: -10, L: -5}))
}

func TestRelativeLuminance(t *testing.T) {
	assert.InDelta(t, 0.0, RelativeLuminance(Black), 0.001)
	assert.InDelta(t, 1.0, RelativeLuminance(White), 0.001)
	// WCAG reference value for pure red.
	assert.InDelta(t, 0.2126, RelativeLuminance(RGB{255, 0, 0}), 0.001)
}

func TestContrastRatio(t *testing.T) {
	ratio := ContrastRatio(Black, White)
	assert.Greater(t, ratio, 20.0)
	assert.Equal(t, ratio, ContrastRatio(White, Black), "symmetric in argument order")

	assert.InDelta(t, 1.0, ContrastRatio(White, White), 0.001)
}

func TestApproxLCHLightnessLift(t *testing.T) {
	// Lifting L must produce a brighter color with roughly preserved hue.
	dim := RGB{60, 60, 80}
	lch := ToApproxLCH(dim)
	lch.L = 80

	lifted := FromApproxLCH(lch)
	require.Greater(t, RelativeLuminance(lifted), RelativeLuminance(dim))

	origHue := RGBToHSL(dim).H
	liftedHue := RGBToHSL(lifted).H
	assert.InDelta(t, origHue, liftedHue, 5)
}

func TestFromApproxLCHMatchesTargetLuma(t *testing.T) {
	lch := LCH{L: 70, C: 30, H: 200}
	out := FromApproxLCH(lch)
	luma := (0.2126*float64(out.R) + 0.7152*float64(out.G) + 0.0722*float64(out.B)) / 255.0
	assert.InDelta(t, 0.70, luma, 0.02)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RGB
		ok   bool
	}{
		{name: "hex long", in: "#2196f3", want: RGB{33, 150, 243}, ok: true},
		{name: "hex short", in: "#fff", want: RGB{255, 255, 255}, ok: true},
		{name: "hex alpha opaque", in: "#000000ff", want: RGB{0, 0, 0}, ok: true},
		{name: "hex alpha zero", in: "#00000000", ok: false},
		{name: "rgb", in: "rgb(12, 34, 56)", want: RGB{12, 34, 56}, ok: true},
		{name: "rgb no spaces", in: "rgb(12,34,56)", want: RGB{12, 34, 56}, ok: true},
		{name: "rgba opaque", in: "rgba(1, 2, 3, 1)", want: RGB{1, 2, 3}, ok: true},
		{name: "rgba transparent", in: "rgba(0, 0, 0, 0)", ok: false},
		{name: "rgb percent", in: "rgb(100%, 0%, 50%)", want: RGB{255, 0, 128}, ok: true},
		{name: "hsl", in: "hsl(0, 100%, 50%)", want: RGB{255, 0, 0}, ok: true},
		{name: "named", in: "White", want: RGB{255, 255, 255}, ok: true},
		{name: "transparent keyword", in: "transparent", ok: false},
		{name: "currentcolor", in: "currentColor", ok: false},
		{name: "garbage", in: "url(#gradient)", ok: false},
		{name: "empty", in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsTransparent(t *testing.T) {
	assert.True(t, IsTransparent("transparent"))
	assert.True(t, IsTransparent(""))
	assert.True(t, IsTransparent("rgba(0, 0, 0, 0)"))
	assert.False(t, IsTransparent("rgba(0, 0, 0, 0.5)"))
	assert.False(t, IsTransparent("#fff"))
	assert.False(t, IsTransparent("not-a-color"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "#2196f3", Format(RGB{33, 150, 243}))
	assert.Equal(t, "hsl(210, 50%, 40%)", FormatHSL(HSL{H: 210, S: 50, L: 40}))
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{"rgb(", "rgb()", "hsl(a,b,c)", "#zzzzzz", "rgb(1,2)", "#12345", ")("}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in) }, "input %q", in)
	}
	assert.False(t, math.IsNaN(ContrastRatio(RGB{}, RGB{})))
}
