package strategy

import (
	"context"

	"github.com/bnema/umbra/internal/cache"
	"github.com/bnema/umbra/internal/color"
	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/logging"
	"github.com/bnema/umbra/internal/schedule"
)

// walkerBatchSize bounds how many elements one scheduler chunk processes.
const walkerBatchSize = 500

// colorCacheCapacity bounds the per-instance memoization cache. Pages
// rarely use more than a few hundred distinct colors.
const colorCacheCapacity = 2048

// DOMWalker recolors every element by lightness inversion: light
// backgrounds become dark, dark foregrounds become light, hue and
// saturation are preserved. Traversal is batched across scheduler ticks
// and newly inserted subtrees are picked up through the document's
// mutation bus.
type DOMWalker struct {
	sched *schedule.Scheduler

	doc       *dom.Document
	mods      Modifiers
	colors    *cache.LRU[string, string]
	track     *styleTracker
	queue     []*dom.Element
	handle    *schedule.Handle
	unsub     func()
	scheduled bool
}

// NewDOMWalker creates the traversal strategy. The scheduler is required.
func NewDOMWalker(sched *schedule.Scheduler) *DOMWalker {
	return &DOMWalker{
		sched:  sched,
		colors: cache.NewLRU[string, string](colorCacheCapacity),
		track:  newStyleTracker(),
	}
}

// Kind implements Strategy.
func (*DOMWalker) Kind() Kind {
	return KindDOMWalker
}

// Apply implements Strategy. The traversal completes asynchronously as the
// scheduler ticks; calling Apply again before it finishes cancels the
// in-flight cycle and starts over with the new modifiers.
func (w *DOMWalker) Apply(ctx context.Context, doc *dom.Document, mods Modifiers) error {
	log := logging.FromContext(ctx)
	mods = mods.Clamped()

	if w.handle != nil {
		w.handle.Cancel()
		w.handle = nil
		w.scheduled = false
	}
	if w.mods != mods {
		w.colors.Clear()
	}
	w.doc = doc
	w.mods = mods

	if w.unsub == nil {
		w.unsub = doc.Subscribe(func(added []*dom.Element) {
			w.enqueue(ctx, added)
		})
	}

	w.queue = w.queue[:0]
	if body := doc.Body(); body != nil {
		w.queue = append(w.queue, body)
	}
	for _, el := range doc.BodyElements() {
		if visual(el) {
			w.queue = append(w.queue, el)
		}
	}
	log.Debug().Int("elements", len(w.queue)).Msg("dom walker traversal queued")

	w.ensureScheduled(ctx)
	return nil
}

// Remove implements Strategy: restores every inline style the walker
// wrote, disconnects the mutation subscription, and empties the cache.
// Safe to call repeatedly and mid-traversal.
func (w *DOMWalker) Remove(doc *dom.Document) {
	if w.handle != nil {
		w.handle.Cancel()
		w.handle = nil
	}
	w.scheduled = false
	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}

	w.track.restore(doc)
	w.queue = nil
	w.colors.Clear()
	w.doc = nil
}

func (w *DOMWalker) enqueue(ctx context.Context, added []*dom.Element) {
	for _, el := range added {
		if visual(el) {
			w.queue = append(w.queue, el)
		}
	}
	w.ensureScheduled(ctx)
}

func (w *DOMWalker) ensureScheduled(ctx context.Context) {
	if w.scheduled || len(w.queue) == 0 {
		return
	}
	w.scheduled = true
	w.handle = w.sched.Submit(func() bool {
		w.processBatch(ctx)
		if len(w.queue) == 0 {
			w.scheduled = false
			return true
		}
		return false
	})
}

func (w *DOMWalker) processBatch(ctx context.Context) {
	n := walkerBatchSize
	if n > len(w.queue) {
		n = len(w.queue)
	}
	batch := w.queue[:n]
	w.queue = w.queue[n:]

	for _, el := range batch {
		w.processElement(el)
	}
	logging.FromContext(ctx).Trace().Int("batch", n).Int("remaining", len(w.queue)).Msg("dom walker batch processed")
}

func (w *DOMWalker) processElement(el *dom.Element) {
	bgVal := w.track.originalComputed(el, "background-color")
	_, bgParsed := color.Parse(bgVal)
	if out, ok := w.convert(bgVal, roleBG); ok {
		w.track.setStyle(el, "background-color", out)
	}

	// Transparent backgrounds take their contrast context from the nearest
	// opaque ancestor. Inside a region that is dark in the original page,
	// the region's colors are left as-is, so the foreground stays too.
	if !bgParsed && w.darkContext(el) {
		return
	}

	fgVal := w.track.originalComputed(el, "color")
	if out, ok := w.convert(fgVal, roleFG); ok {
		w.track.setStyle(el, "color", out)
	}

	if borderVal := w.track.originalComputed(el, "border-color"); borderVal != "" {
		// Borders follow the foreground rule.
		if out, ok := w.convert(borderVal, roleFG); ok {
			w.track.setStyle(el, "border-color", out)
		}
	}
}

// darkContext reports whether the nearest opaque ancestor background was
// dark in the original page. Such regions keep their colors, so foreground
// text inside them is left alone too.
func (w *DOMWalker) darkContext(el *dom.Element) bool {
	for e := el.Parent(); e != nil; e = e.Parent() {
		val := w.track.originalComputed(e, "background-color")
		rgb, ok := color.Parse(val)
		if !ok {
			continue
		}
		return color.RGBToHSL(rgb).L <= 50
	}
	return false
}

type colorRole string

const (
	roleBG colorRole = "bg"
	roleFG colorRole = "fg"
)

// convert maps an original color value through the inversion rule for its
// role, memoized per (value, role, modifier set). ok is false when the
// value does not parse or needs no change.
func (w *DOMWalker) convert(value string, role colorRole) (string, bool) {
	if value == "" {
		return "", false
	}
	key := value + "|" + string(role) + "|" + w.mods.Fingerprint()
	if out, hit := w.colors.Get(key); hit {
		return out, out != ""
	}

	out := ""
	if rgb, ok := color.Parse(value); ok {
		hsl := color.RGBToHSL(rgb)
		switch role {
		case roleBG:
			if hsl.L > 50 {
				hsl.L = 100 - hsl.L
				out = color.FormatHSL(w.adjust(hsl))
			}
		case roleFG:
			if hsl.L < 50 {
				hsl.L = 100 - hsl.L
				out = color.FormatHSL(w.adjust(hsl))
			}
		}
	}
	w.colors.Set(key, out)
	return out, out != ""
}

// adjust applies the numeric modifiers to an already-inverted color.
func (w *DOMWalker) adjust(hsl color.HSL) color.HSL {
	hsl.L = hsl.L * float64(w.mods.Brightness) / 100
	hsl.L = 50 + (hsl.L-50)*float64(w.mods.Contrast)/100
	if hsl.L < 0 {
		hsl.L = 0
	}
	if hsl.L > 100 {
		hsl.L = 100
	}
	hsl.S = hsl.S * float64(100-w.mods.Grayscale) / 100

	warmth := w.mods.Sepia
	if w.mods.BlueShift > warmth {
		warmth = w.mods.BlueShift
	}
	if warmth > 0 {
		// Pull the hue toward amber to cut blue emission.
		t := float64(warmth) / 100
		hsl.H = hsl.H*(1-t) + 35*t
	}
	return hsl
}
