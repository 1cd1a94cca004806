package config

import (
	"fmt"
	"strings"

	"github.com/bnema/umbra/internal/strategy"
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeSettings clamps numeric modifiers into their documented ranges
// and rewrites origin keys to their normalized form.
func normalizeSettings(s *Settings) {
	s.Strategy = strings.ToLower(strings.TrimSpace(s.Strategy))
	if s.Strategy == "" {
		s.Strategy = strategy.KindChromaSemantic.String()
	}

	s.Brightness = clampInt(s.Brightness, strategy.MinBrightness, strategy.MaxBrightness)
	s.Contrast = clampInt(s.Contrast, strategy.MinContrast, strategy.MaxContrast)
	s.Sepia = clampInt(s.Sepia, 0, 100)
	s.Grayscale = clampInt(s.Grayscale, 0, 100)
	s.BlueShift = clampInt(s.BlueShift, 0, 100)

	if len(s.Origins) == 0 {
		return
	}
	normalized := make(map[string]OriginOverride, len(s.Origins))
	for key, o := range s.Origins {
		if o.Brightness != nil {
			v := clampInt(*o.Brightness, strategy.MinBrightness, strategy.MaxBrightness)
			o.Brightness = &v
		}
		if o.Contrast != nil {
			v := clampInt(*o.Contrast, strategy.MinContrast, strategy.MaxContrast)
			o.Contrast = &v
		}
		if o.Sepia != nil {
			v := clampInt(*o.Sepia, 0, 100)
			o.Sepia = &v
		}
		if o.Grayscale != nil {
			v := clampInt(*o.Grayscale, 0, 100)
			o.Grayscale = &v
		}
		if o.BlueShift != nil {
			v := clampInt(*o.BlueShift, 0, 100)
			o.BlueShift = &v
		}
		o.Strategy = strings.ToLower(strings.TrimSpace(o.Strategy))
		normalized[NormalizeOrigin(key)] = o
	}
	s.Origins = normalized
}

// validateSettings rejects values normalization cannot repair, such as an
// unknown strategy name.
func validateSettings(s *Settings) error {
	if _, err := strategy.ParseKind(s.Strategy); err != nil {
		return fmt.Errorf("invalid strategy %q: %w", s.Strategy, err)
	}
	for origin, o := range s.Origins {
		if o.Strategy == "" {
			continue
		}
		if _, err := strategy.ParseKind(o.Strategy); err != nil {
			return fmt.Errorf("invalid strategy %q for origin %s: %w", o.Strategy, origin, err)
		}
	}
	return nil
}
