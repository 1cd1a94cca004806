// Package optimize implements the contrast feedback loop: foreground and
// background pairs are sampled from the themed document, shipped to an
// isolated analyzer context, and the returned contrast suggestion is fed
// back into the active strategy's modifiers by the engine.
package optimize

import (
	"github.com/bnema/umbra/internal/dom"
)

// MaxSamples caps one sample batch. Batches are created fresh per
// optimizer tick and discarded after the suggestion is produced.
const MaxSamples = 120

// Pair is one foreground/background color observation.
type Pair struct {
	Foreground string
	Background string
}

// textTags are the element kinds likely to carry readable text.
var textTags = map[string]bool{
	"p": true, "span": true, "a": true, "li": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"label": true, "blockquote": true, "code": true, "pre": true,
	"button": true, "dd": true, "dt": true, "figcaption": true,
}

// Sample collects up to max foreground/background pairs from visible
// text-bearing elements, in document order. Elements without a resolvable
// foreground or background are skipped.
func Sample(doc *dom.Document, max int) []Pair {
	if max <= 0 || max > MaxSamples {
		max = MaxSamples
	}

	var pairs []Pair
	for _, el := range doc.BodyElements() {
		if len(pairs) >= max {
			break
		}
		if !textTags[el.Tag()] || !el.HasText() {
			continue
		}
		fg := el.ComputedStyle("color")
		if fg == "" {
			continue
		}
		bg, ok := el.EffectiveBackground()
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Foreground: fg, Background: bg})
	}
	return pairs
}
