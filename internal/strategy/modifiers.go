package strategy

import "fmt"

// Modifier bounds. Values outside these ranges are clamped, never
// rejected.
const (
	MinBrightness = 50
	MaxBrightness = 120
	MinContrast   = 50
	MaxContrast   = 200
)

// Modifiers are the numeric theming knobs plus the AMOLED flag. All
// percentages. A Modifiers value is immutable input for one Apply; the
// engine supplies a fresh one on every invocation.
type Modifiers struct {
	Brightness int
	Contrast   int
	Sepia      int
	Grayscale  int
	BlueShift  int
	AMOLED     bool
}

// DefaultModifiers returns the neutral modifier set.
func DefaultModifiers() Modifiers {
	return Modifiers{
		Brightness: 100,
		Contrast:   100,
		Sepia:      0,
		Grayscale:  0,
		BlueShift:  0,
	}
}

// Clamped returns a copy with every value forced into its legal range.
func (m Modifiers) Clamped() Modifiers {
	m.Brightness = clampInt(m.Brightness, MinBrightness, MaxBrightness)
	m.Contrast = clampInt(m.Contrast, MinContrast, MaxContrast)
	m.Sepia = clampInt(m.Sepia, 0, 100)
	m.Grayscale = clampInt(m.Grayscale, 0, 100)
	m.BlueShift = clampInt(m.BlueShift, 0, 100)
	return m
}

// Fingerprint scopes cache keys: cached color mappings are only valid for
// the exact modifier set that produced them.
func (m Modifiers) Fingerprint() string {
	amoled := 0
	if m.AMOLED {
		amoled = 1
	}
	return fmt.Sprintf("b%d|c%d|s%d|g%d|u%d|a%d",
		m.Brightness, m.Contrast, m.Sepia, m.Grayscale, m.BlueShift, amoled)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
