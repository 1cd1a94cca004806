package config

import "github.com/bnema/umbra/internal/strategy"

// DefaultSettings returns the out-of-the-box settings: theming enabled,
// the chroma-semantic strategy, neutral modifiers, and already-dark
// detection on.
func DefaultSettings() Settings {
	return Settings{
		Enabled:    true,
		Strategy:   strategy.KindChromaSemantic.String(),
		Brightness: strategy.DefaultModifiers().Brightness,
		Contrast:   strategy.DefaultModifiers().Contrast,
		Sepia:      0,
		Grayscale:  0,
		BlueShift:  0,
		AMOLED:     false,
		DetectDark: true,
		Origins:    map[string]OriginOverride{},
	}
}
