package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/bnema/umbra/internal/color"
	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/logging"
	"github.com/bnema/umbra/internal/schedule"
)

const (
	// ChromaVarsMarker identifies the injected custom-property overrides.
	ChromaVarsMarker = "umbra-chroma-vars"

	// ChromaAttrMarker is set on the document element while the engine's
	// artifacts are live.
	ChromaAttrMarker = "data-umbra-chroma"

	// chromaBatchSize bounds one scheduler chunk. Smaller than the
	// walker's batch: per-element work is heavier here.
	chromaBatchSize = 200

	// chromaBudget is the wall-clock allowance for one Apply. Exceeding it
	// aborts the engine in favor of the Photon Inverter.
	chromaBudget = 200 * time.Millisecond

	// contrastFloor is the minimum foreground/background contrast ratio.
	contrastFloor = 4.5

	// lightnessCeiling stops the enforcement loop: a foreground lifted to
	// 95% lightness is as readable as it is going to get.
	lightnessCeiling = 95.0
)

// ChromaSemantic is the highest-fidelity strategy: elevation-based
// backgrounds, semantic foreground roles, custom-property rewriting, and a
// hard WCAG contrast guarantee, all under a wall-clock governor that falls
// back to the Photon Inverter when the page is too heavy.
type ChromaSemantic struct {
	sched      *schedule.Scheduler
	onFallback func(reason string)
	clock      func() time.Time

	doc       *dom.Document
	mods      Modifiers
	palette   [5]color.RGB
	roles     roleColors
	track     *styleTracker
	queue     []*dom.Element
	handle    *schedule.Handle
	unsub     func()
	scheduled bool
	start     time.Time
	fallback  *PhotonInverter
	fellBack  bool
	advised   bool
}

type roleColors struct {
	heading color.RGB
	body    color.RGB
	link    color.RGB
	input   color.RGB
}

// NewChromaSemantic creates the semantic engine. onFallback may be nil.
func NewChromaSemantic(sched *schedule.Scheduler, onFallback func(string)) *ChromaSemantic {
	return &ChromaSemantic{
		sched:      sched,
		onFallback: onFallback,
		clock:      time.Now,
		track:      newStyleTracker(),
		fallback:   NewPhotonInverter(),
	}
}

// Kind implements Strategy.
func (*ChromaSemantic) Kind() Kind {
	return KindChromaSemantic
}

// Apply implements Strategy. Runs the variable-indexing phase immediately,
// then queues element processing on the scheduler. The wall-clock budget
// is checked after each phase and batch; exceeding it degrades to the
// Photon Inverter for the rest of this page load.
func (c *ChromaSemantic) Apply(ctx context.Context, doc *dom.Document, mods Modifiers) error {
	log := logging.FromContext(ctx)
	mods = mods.Clamped()

	if c.handle != nil {
		c.handle.Cancel()
		c.handle = nil
		c.scheduled = false
	}
	c.doc = doc
	c.mods = mods
	c.palette = elevationPalette(mods.AMOLED)
	c.roles = semanticRoles(mods)
	c.start = c.clock()
	c.fellBack = false

	if root := doc.Root(); root != nil {
		root.SetAttr(ChromaAttrMarker, "")
	}

	c.indexVariables(ctx, doc)
	if c.overBudget() {
		c.degrade(ctx, "custom property indexing exceeded the time budget")
		return nil
	}

	if c.unsub == nil {
		c.unsub = doc.Subscribe(func(added []*dom.Element) {
			c.enqueue(ctx, added)
		})
	}

	c.queue = c.queue[:0]
	if body := doc.Body(); body != nil {
		c.queue = append(c.queue, body)
	}
	for _, el := range doc.BodyElements() {
		if visual(el) {
			c.queue = append(c.queue, el)
		}
	}
	log.Debug().Int("elements", len(c.queue)).Msg("chroma engine queued")

	c.ensureScheduled(ctx)
	return nil
}

// Remove implements Strategy: restores inline styles, drops the injected
// variable block and the attribute marker, detaches the mutation
// subscription, and removes the fallback inverter's block if the governor
// had tripped. Safe to call repeatedly, including mid-batch.
func (c *ChromaSemantic) Remove(doc *dom.Document) {
	if c.handle != nil {
		c.handle.Cancel()
		c.handle = nil
	}
	c.scheduled = false
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}

	c.track.restore(doc)
	c.queue = nil

	doc.RemoveStyle(ChromaVarsMarker)
	if root := doc.Root(); root != nil {
		root.RemoveAttr(ChromaAttrMarker)
	}
	c.fallback.Remove(doc)
	c.doc = nil
}

// indexVariables scans reachable stylesheets for color-valued custom
// properties and injects dark replacements. Unreadable (cross-origin)
// sheets are skipped; that limitation is non-fatal.
func (c *ChromaSemantic) indexVariables(ctx context.Context, doc *dom.Document) {
	log := logging.FromContext(ctx)

	for _, sheet := range doc.Stylesheets() {
		if sheet.Unreadable {
			log.Debug().Str("href", sheet.Href).Msg("skipping unreadable stylesheet")
		}
	}

	props := doc.CustomProperties()
	if len(props) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString(":root {\n")
	rewritten := 0
	for name, value := range props {
		rgb, ok := color.Parse(value)
		if !ok {
			continue
		}
		hsl := color.RGBToHSL(rgb)
		// Light values are almost always surfaces, dark ones text.
		hsl.L = 100 - hsl.L
		fmt.Fprintf(&b, "  %s: %s;\n", name, color.FormatHSL(hsl))
		rewritten++
	}
	b.WriteString("}\n")

	if rewritten > 0 {
		doc.InjectStyle(ChromaVarsMarker, b.String())
		log.Debug().Int("variables", rewritten).Msg("custom properties rewritten")
	}
}

func (c *ChromaSemantic) enqueue(ctx context.Context, added []*dom.Element) {
	if c.fellBack {
		return
	}
	for _, el := range added {
		if visual(el) {
			c.queue = append(c.queue, el)
		}
	}
	c.ensureScheduled(ctx)
}

func (c *ChromaSemantic) ensureScheduled(ctx context.Context) {
	if c.scheduled || len(c.queue) == 0 {
		return
	}
	c.scheduled = true
	c.handle = c.sched.Submit(func() bool {
		c.processBatch()
		if c.overBudget() {
			c.scheduled = false
			c.degrade(ctx, "element processing exceeded the time budget")
			return true
		}
		if len(c.queue) == 0 {
			c.scheduled = false
			return true
		}
		return false
	})
}

func (c *ChromaSemantic) processBatch() {
	n := chromaBatchSize
	if n > len(c.queue) {
		n = len(c.queue)
	}
	batch := c.queue[:n]
	c.queue = c.queue[n:]
	for _, el := range batch {
		c.processElement(el)
	}
}

func (c *ChromaSemantic) overBudget() bool {
	return c.clock().Sub(c.start) > chromaBudget
}

// degrade aborts the engine: its artifacts come off, the Photon Inverter
// goes on, and the orchestrator is advised exactly once.
func (c *ChromaSemantic) degrade(ctx context.Context, reason string) {
	log := logging.FromContext(ctx)
	doc := c.doc

	c.Remove(doc)
	c.fellBack = true
	c.doc = doc

	if err := c.fallback.Apply(ctx, doc, c.mods); err != nil {
		log.Warn().Err(err).Msg("fallback inverter failed")
	}
	log.Info().Str("reason", reason).Msg("chroma engine degraded to photon inverter")

	if c.onFallback != nil && !c.advised {
		c.advised = true
		c.onFallback(reason)
	}
}

func (c *ChromaSemantic) processElement(el *dom.Element) {
	bgVal := c.track.originalComputed(el, "background-color")
	_, hadOpaqueBG := color.Parse(bgVal)

	var assignedBG color.RGB
	haveBG := false
	if hadOpaqueBG || el.Tag() == "body" {
		assignedBG = c.palette[elevationBand(el.Depth())]
		c.track.setStyle(el, "background-color", color.Format(assignedBG))
		haveBG = true
	}

	role := classify(el)
	if role == roleNone {
		return
	}

	fg := c.roleColor(role)
	if !haveBG {
		assignedBG = c.contextBackground(el)
	}
	fg = enforceContrast(fg, assignedBG, c.floor())
	c.track.setStyle(el, "color", color.Format(fg))
}

// floor scales the contrast requirement with the contrast modifier, never
// below the WCAG AA minimum.
func (c *ChromaSemantic) floor() float64 {
	f := contrastFloor * float64(c.mods.Contrast) / 100
	if f < contrastFloor {
		return contrastFloor
	}
	return f
}

// contextBackground resolves the dark background this element actually
// sits on: the elevation shade already assigned to the nearest painted
// ancestor, or the base shade.
func (c *ChromaSemantic) contextBackground(el *dom.Element) color.RGB {
	for e := el.Parent(); e != nil; e = e.Parent() {
		if v := e.StyleProperty("background-color"); v != "" {
			if rgb, ok := color.Parse(v); ok {
				return rgb
			}
		}
	}
	return c.palette[0]
}

// enforceContrast lifts the foreground's lightness in fixed increments
// until the floor is met or the lightness ceiling is reached.
func enforceContrast(fg, bg color.RGB, floor float64) color.RGB {
	if color.ContrastRatio(fg, bg) >= floor {
		return fg
	}
	lch := color.ToApproxLCH(fg)
	for lch.L < lightnessCeiling {
		lch.L += 5
		if lch.L > lightnessCeiling {
			lch.L = lightnessCeiling
		}
		fg = color.FromApproxLCH(lch)
		if color.ContrastRatio(fg, bg) >= floor {
			return fg
		}
	}
	return fg
}

type semanticRole int

const (
	roleNone semanticRole = iota
	roleHeading
	roleLink
	roleInput
	roleBody
)

// classify buckets an element by ARIA role or tag.
func classify(el *dom.Element) semanticRole {
	switch strings.ToLower(el.Attr("role")) {
	case "heading":
		return roleHeading
	case "link":
		return roleLink
	case "textbox", "searchbox", "button", "combobox":
		return roleInput
	}
	switch el.Tag() {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return roleHeading
	case "a":
		return roleLink
	case "input", "textarea", "select", "button":
		return roleInput
	}
	if el.HasText() {
		return roleBody
	}
	return roleNone
}

func (c *ChromaSemantic) roleColor(role semanticRole) color.RGB {
	switch role {
	case roleHeading:
		return c.roles.heading
	case roleLink:
		return c.roles.link
	case roleInput:
		return c.roles.input
	default:
		return c.roles.body
	}
}

// elevationBand maps nesting depth to one of the five palette steps:
// darkest at the base, lightest for the most deeply nested surfaces.
func elevationBand(depth int) int {
	band := depth / 2
	if band > 4 {
		band = 4
	}
	return band
}

// elevationPalette derives the five-step surface palette. A faint blue
// cast keeps the grays from looking muddy; AMOLED pulls the base to true
// black.
func elevationPalette(amoled bool) [5]color.RGB {
	steps := []float64{0.07, 0.10, 0.13, 0.16, 0.19}
	if amoled {
		steps = []float64{0.0, 0.04, 0.07, 0.10, 0.13}
	}
	var out [5]color.RGB
	for i, l := range steps {
		r, g, b := colorful.Hsl(220, 0.08, l).Clamped().RGB255()
		out[i] = color.RGB{R: r, G: g, B: b}
	}
	return out
}

// semanticRoles derives the role foreground colors. Body text is slightly
// off-white to reduce eye strain; links get a desaturated accent.
func semanticRoles(mods Modifiers) roleColors {
	linkSat := 0.55 * float64(100-mods.Grayscale) / 100
	lr, lg, lb := colorful.Hsl(213, linkSat, 0.72).Clamped().RGB255()
	return roleColors{
		heading: color.RGB{R: 250, G: 250, B: 250},
		body:    color.RGB{R: 232, G: 230, B: 227},
		link:    color.RGB{R: lr, G: lg, B: lb},
		input:   color.RGB{R: 213, G: 213, B: 213},
	}
}
