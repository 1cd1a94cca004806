package detect

import (
	"os"
	"os/exec"
	"sort"
	"strings"
)

// SystemDetector reports the host environment's dark-mode preference.
// Detectors are consulted in priority order (highest first); ok=false
// means the detector could not determine a preference.
type SystemDetector interface {
	Name() string
	Priority() int
	Available() bool
	Detect() (prefersDark, ok bool)
}

func sortedByPriority(detectors []SystemDetector) []SystemDetector {
	sorted := make([]SystemDetector, len(detectors))
	copy(sorted, detectors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return sorted
}

const (
	detectorNameEnv = "GTK_THEME"
	priorityEnv     = 20
)

// EnvDetector detects the preference from the GTK_THEME environment
// variable, for users who set their theme explicitly.
type EnvDetector struct{}

// NewEnvDetector creates a new environment variable-based detector.
func NewEnvDetector() *EnvDetector {
	return &EnvDetector{}
}

// Name implements SystemDetector.
func (*EnvDetector) Name() string {
	return detectorNameEnv
}

// Priority implements SystemDetector.
func (*EnvDetector) Priority() int {
	return priorityEnv
}

// Available implements SystemDetector.
func (*EnvDetector) Available() bool {
	return os.Getenv("GTK_THEME") != ""
}

// Detect implements SystemDetector.
// Checks if GTK_THEME contains "dark" (case-insensitive).
func (*EnvDetector) Detect() (prefersDark, ok bool) {
	gtkTheme := os.Getenv("GTK_THEME")
	if gtkTheme == "" {
		return false, false
	}
	prefersDark = strings.Contains(strings.ToLower(gtkTheme), "dark")
	return prefersDark, true
}

const (
	detectorNameGsettings = "gsettings"
	priorityGsettings     = 10
)

// GsettingsDetector detects the preference from GNOME gsettings.
// This is the most reliable method for GNOME-based desktops.
type GsettingsDetector struct{}

// NewGsettingsDetector creates a new gsettings-based detector.
func NewGsettingsDetector() *GsettingsDetector {
	return &GsettingsDetector{}
}

// Name implements SystemDetector.
func (*GsettingsDetector) Name() string {
	return detectorNameGsettings
}

// Priority implements SystemDetector.
func (*GsettingsDetector) Priority() int {
	return priorityGsettings
}

// Available implements SystemDetector.
func (*GsettingsDetector) Available() bool {
	_, err := exec.LookPath("gsettings")
	return err == nil
}

// Detect implements SystemDetector.
// Queries org.gnome.desktop.interface color-scheme.
func (*GsettingsDetector) Detect() (prefersDark, ok bool) {
	cmd := exec.Command("gsettings", "get", "org.gnome.desktop.interface", "color-scheme")
	output, err := cmd.Output()
	if err != nil {
		return false, false
	}

	// Output is like "'prefer-dark'\n", strip quotes and whitespace
	result := strings.TrimSpace(string(output))
	result = strings.Trim(result, "'\"")

	switch result {
	case "prefer-dark":
		return true, true
	case "prefer-light":
		return false, true
	default:
		return false, false
	}
}
