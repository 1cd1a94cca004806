package strategy

import (
	"golang.org/x/net/html"

	"github.com/bnema/umbra/internal/dom"
)

// savedProp remembers an inline property as it was before a strategy
// touched it, so Remove can restore the exact original state.
type savedProp struct {
	name  string
	value string
	had   bool
}

// styleTracker is the traversal strategies' shared bookkeeping: which
// inline properties were written (for restoration) and what each element's
// computed values were before any rewriting (ancestors are rewritten
// before their descendants are reached, and a re-applied pass must not
// mistake its own output for page colors).
type styleTracker struct {
	processed map[*html.Node][]savedProp
	origVals  map[*html.Node]map[string]string
}

func newStyleTracker() *styleTracker {
	return &styleTracker{
		processed: make(map[*html.Node][]savedProp),
		origVals:  make(map[*html.Node]map[string]string),
	}
}

// originalComputed resolves a property as the page had it, recording the
// value on first sight.
func (t *styleTracker) originalComputed(el *dom.Element, prop string) string {
	node := el.Key()
	if m, ok := t.origVals[node]; ok {
		if v, ok2 := m[prop]; ok2 {
			return v
		}
	} else {
		t.origVals[node] = make(map[string]string)
	}
	v := el.ComputedStyle(prop)
	t.origVals[node][prop] = v
	return v
}

// setStyle writes an inline property, remembering the original value the
// first time this element/property pair is touched.
func (t *styleTracker) setStyle(el *dom.Element, name, value string) {
	node := el.Key()
	already := false
	for _, p := range t.processed[node] {
		if p.name == name {
			already = true
			break
		}
	}
	if !already {
		orig := el.StyleProperty(name)
		t.processed[node] = append(t.processed[node], savedProp{
			name:  name,
			value: orig,
			had:   orig != "",
		})
	}
	el.SetStyleProperty(name, value)
}

// restore puts every written property back and resets the tracker.
// Elements detached since being processed are skipped.
func (t *styleTracker) restore(doc *dom.Document) {
	for node, saved := range t.processed {
		el := dom.Wrap(doc, node)
		if el == nil {
			continue
		}
		for _, p := range saved {
			if p.had {
				el.SetStyleProperty(p.name, p.value)
			} else {
				el.RemoveStyleProperty(p.name)
			}
		}
	}
	t.processed = make(map[*html.Node][]savedProp)
	t.origVals = make(map[*html.Node]map[string]string)
}
