// Package detect classifies a document as already dark or light before any
// theming is applied. Explicit author markers are checked first, then
// sampled background luminance, then the host system's preference; the
// first signal that fires wins.
package detect

import (
	"context"
	"math/rand"
	"strings"

	"github.com/bnema/umbra/internal/color"
	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/logging"
)

const (
	// DarkLuminanceThreshold is the mean background luminance below which a
	// page counts as dark. Earlier revisions of this logic used 0.3 in one
	// code path and 0.2 in another; 0.2 is the value kept.
	DarkLuminanceThreshold = 0.2

	// maxLuminanceSamples is how many container elements are sampled in
	// addition to the body.
	maxLuminanceSamples = 5

	// containerDepthThreshold is the minimum nesting depth for a container
	// to be eligible for sampling. Shallow wrappers tend to be unstyled.
	containerDepthThreshold = 3
)

// Signal names which check produced the classification.
type Signal string

const (
	SignalMarker    Signal = "marker"
	SignalLuminance Signal = "luminance"
	SignalSystem    Signal = "system"
	SignalDefault   Signal = "default"
)

// Result is the classification plus the evidence that produced it. It is
// recomputed on every navigation and never persisted.
type Result struct {
	Dark   bool
	Signal Signal

	// Marker is the class, attribute, or declaration that matched, when
	// Signal is SignalMarker.
	Marker string

	// MeanLuminance and Samples describe the sampling pass, when Signal is
	// SignalLuminance.
	MeanLuminance float64
	Samples       int

	// Source is the system detector that answered, when Signal is
	// SignalSystem.
	Source string
}

// darkMarkers are class/attribute tokens that authors use to flag a dark
// theme.
var darkMarkers = []string{"dark", "night", "black", "theme-dark", "dark-mode", "darkmode"}

// containerTags are the element kinds eligible for luminance sampling.
var containerTags = map[string]bool{
	"div": true, "section": true, "article": true, "main": true,
	"aside": true, "header": true, "footer": true, "nav": true,
}

// Detector classifies documents. The zero value is not usable; construct
// with New.
type Detector struct {
	system []SystemDetector
	rng    *rand.Rand
}

// Option configures a Detector.
type Option func(*Detector)

// WithSystemDetectors replaces the default system-preference chain.
func WithSystemDetectors(detectors ...SystemDetector) Option {
	return func(d *Detector) {
		d.system = detectors
	}
}

// WithSeed fixes the sampling RNG seed, for reproducible runs.
func WithSeed(seed int64) Option {
	return func(d *Detector) {
		d.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a Detector with the default system-preference chain.
func New(opts ...Option) *Detector {
	d := &Detector{
		system: []SystemDetector{
			NewEnvDetector(),
			NewGsettingsDetector(),
		},
		rng: rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsAlreadyDark classifies the document. Side-effect free apart from
// diagnostic logging.
func (d *Detector) IsAlreadyDark(ctx context.Context, doc *dom.Document) Result {
	log := logging.FromContext(ctx)

	if marker, found := findMarker(doc); found {
		log.Debug().Str("marker", marker).Msg("explicit dark marker found")
		return Result{Dark: true, Signal: SignalMarker, Marker: marker}
	}

	lum, sampled := d.sampleLuminance(doc)
	if sampled {
		log.Debug().
			Float64("mean_luminance", lum.MeanLuminance).
			Int("samples", lum.Samples).
			Bool("dark", lum.Dark).
			Msg("luminance sampling finished")
	}
	if sampled && lum.Dark {
		return lum
	}

	// The system preference is the weakest signal: it reflects the device,
	// not the page, so it only decides when sampling found nothing darker.
	for _, sys := range sortedByPriority(d.system) {
		if !sys.Available() {
			continue
		}
		if prefersDark, ok := sys.Detect(); ok && prefersDark {
			log.Debug().Str("source", sys.Name()).Msg("system prefers dark")
			return Result{Dark: true, Signal: SignalSystem, Source: sys.Name()}
		}
	}

	if sampled {
		return lum
	}
	return Result{Dark: false, Signal: SignalDefault}
}

// findMarker checks the root and body for dark-theme classes or attribute
// values, a color-scheme meta declaration, and the computed color-scheme
// style.
func findMarker(doc *dom.Document) (string, bool) {
	for _, el := range []*dom.Element{doc.Root(), doc.Body()} {
		if el == nil {
			continue
		}
		for _, class := range el.Classes() {
			if isDarkToken(class) {
				return "class=" + class, true
			}
		}
		for _, attr := range []string{"data-theme", "data-color-scheme", "theme", "data-mode"} {
			if v := el.Attr(attr); isDarkToken(v) {
				return attr + "=" + v, true
			}
		}
		if cs := el.ComputedStyle("color-scheme"); strings.Contains(strings.ToLower(cs), "dark") {
			return "color-scheme:" + cs, true
		}
	}

	if head := doc.Head(); head != nil {
		for _, el := range head.Descendants() {
			if el.Tag() != "meta" {
				continue
			}
			if strings.EqualFold(el.Attr("name"), "color-scheme") &&
				strings.Contains(strings.ToLower(el.Attr("content")), "dark") {
				return "meta color-scheme=" + el.Attr("content"), true
			}
		}
	}
	return "", false
}

func isDarkToken(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, m := range darkMarkers {
		if v == m {
			return true
		}
	}
	return false
}

// sampleLuminance averages the body background luminance with up to
// maxLuminanceSamples deeply nested containers. decided is false when not
// a single opaque, parseable background was found.
func (d *Detector) sampleLuminance(doc *dom.Document) (Result, bool) {
	body := doc.Body()
	if body == nil {
		return Result{}, false
	}

	var luminances []float64
	if bg, ok := color.Parse(body.ComputedStyle("background-color")); ok {
		luminances = append(luminances, color.RelativeLuminance(bg))
	}

	var candidates []*dom.Element
	for _, el := range doc.BodyElements() {
		if containerTags[el.Tag()] && el.Depth() > containerDepthThreshold {
			candidates = append(candidates, el)
		}
	}
	d.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	sampled := 0
	for _, el := range candidates {
		if sampled >= maxLuminanceSamples {
			break
		}
		v := el.ComputedStyle("background-color")
		bg, ok := color.Parse(v)
		if !ok {
			// Transparent or unparseable backgrounds are skipped.
			continue
		}
		luminances = append(luminances, color.RelativeLuminance(bg))
		sampled++
	}

	if len(luminances) == 0 {
		return Result{}, false
	}

	sum := 0.0
	for _, l := range luminances {
		sum += l
	}
	mean := sum / float64(len(luminances))

	return Result{
		Dark:          mean < DarkLuminanceThreshold,
		Signal:        SignalLuminance,
		MeanLuminance: mean,
		Samples:       len(luminances),
	}, true
}
