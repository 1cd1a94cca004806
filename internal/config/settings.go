// Package config loads and watches the engine's settings record. The
// engine itself never reads configuration; it receives an immutable
// Settings value per invocation and a "settings changed" signal through
// the manager's callbacks.
package config

import (
	"net/url"
	"strings"

	"github.com/bnema/umbra/internal/strategy"
)

// Settings is the full configuration record. Numeric modifiers are
// percentages; out-of-range values are clamped during normalization.
type Settings struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled" jsonschema:"description=Master switch for the theming engine"`
	Strategy string `mapstructure:"strategy" json:"strategy" jsonschema:"enum=photon-inverter,enum=dom-walker,enum=chroma-semantic"`

	Brightness int `mapstructure:"brightness" json:"brightness" jsonschema:"minimum=50,maximum=120"`
	Contrast   int `mapstructure:"contrast" json:"contrast" jsonschema:"minimum=50,maximum=200"`
	Sepia      int `mapstructure:"sepia" json:"sepia" jsonschema:"minimum=0,maximum=100"`
	Grayscale  int `mapstructure:"grayscale" json:"grayscale" jsonschema:"minimum=0,maximum=100"`
	BlueShift  int `mapstructure:"blue_shift" json:"blue_shift" jsonschema:"minimum=0,maximum=100"`

	AMOLED bool `mapstructure:"amoled" json:"amoled" jsonschema:"description=Deepen backgrounds to true black"`

	// DetectDark gates theming behind the already-dark classifier.
	DetectDark bool `mapstructure:"detect_dark" json:"detect_dark"`

	// ForceOverride bypasses detection entirely and always themes.
	ForceOverride bool `mapstructure:"force_override" json:"force_override"`

	// Origins holds per-origin overrides keyed by normalized origin.
	Origins map[string]OriginOverride `mapstructure:"origins" json:"origins,omitempty"`
}

// OriginOverride is a partial settings record for one origin. Nil fields
// fall through to the global value.
type OriginOverride struct {
	Enabled       *bool  `mapstructure:"enabled" json:"enabled,omitempty"`
	Strategy      string `mapstructure:"strategy" json:"strategy,omitempty"`
	Brightness    *int   `mapstructure:"brightness" json:"brightness,omitempty"`
	Contrast      *int   `mapstructure:"contrast" json:"contrast,omitempty"`
	Sepia         *int   `mapstructure:"sepia" json:"sepia,omitempty"`
	Grayscale     *int   `mapstructure:"grayscale" json:"grayscale,omitempty"`
	BlueShift     *int   `mapstructure:"blue_shift" json:"blue_shift,omitempty"`
	AMOLED        *bool  `mapstructure:"amoled" json:"amoled,omitempty"`
	ForceOverride *bool  `mapstructure:"force_override" json:"force_override,omitempty"`
}

// Effective merges the override for origin (if any) over the global
// settings and returns the result. The receiver is not modified.
func (s Settings) Effective(origin string) Settings {
	o, ok := s.Origins[NormalizeOrigin(origin)]
	if !ok {
		return s
	}
	if o.Enabled != nil {
		s.Enabled = *o.Enabled
	}
	if o.Strategy != "" {
		s.Strategy = o.Strategy
	}
	if o.Brightness != nil {
		s.Brightness = *o.Brightness
	}
	if o.Contrast != nil {
		s.Contrast = *o.Contrast
	}
	if o.Sepia != nil {
		s.Sepia = *o.Sepia
	}
	if o.Grayscale != nil {
		s.Grayscale = *o.Grayscale
	}
	if o.BlueShift != nil {
		s.BlueShift = *o.BlueShift
	}
	if o.AMOLED != nil {
		s.AMOLED = *o.AMOLED
	}
	if o.ForceOverride != nil {
		s.ForceOverride = *o.ForceOverride
	}
	return s
}

// Modifiers extracts the strategy-facing numeric knobs.
func (s Settings) Modifiers() strategy.Modifiers {
	return strategy.Modifiers{
		Brightness: s.Brightness,
		Contrast:   s.Contrast,
		Sepia:      s.Sepia,
		Grayscale:  s.Grayscale,
		BlueShift:  s.BlueShift,
		AMOLED:     s.AMOLED,
	}.Clamped()
}

// NormalizeOrigin reduces a URL or host string to its lower-case host,
// dropping scheme, port, path, and a leading www.
func NormalizeOrigin(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	host := raw
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			host = u.Host
		}
	}
	if idx := strings.IndexByte(host, '/'); idx >= 0 {
		host = host[:idx]
	}
	if idx := strings.IndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
