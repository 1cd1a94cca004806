package strategy

import (
	"context"
	"fmt"

	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/logging"
)

// PhotonMarker identifies the inverter's injected style block.
const PhotonMarker = "umbra-photon"

// PhotonInverter is the O(1) strategy: one injected style block inverting
// the whole page, plus a rule re-inverting raster media so photographs are
// not shown in negative. Cheapest, lowest fidelity.
type PhotonInverter struct{}

// NewPhotonInverter creates the filter-based inversion strategy.
func NewPhotonInverter() *PhotonInverter {
	return &PhotonInverter{}
}

// Kind implements Strategy.
func (*PhotonInverter) Kind() Kind {
	return KindPhotonInverter
}

// Apply implements Strategy. Completes synchronously.
func (p *PhotonInverter) Apply(ctx context.Context, doc *dom.Document, mods Modifiers) error {
	log := logging.FromContext(ctx)
	mods = mods.Clamped()

	if !doc.InjectStyle(PhotonMarker, photonCSS(mods)) {
		// No head and no root: too early in the load to inject anything.
		log.Debug().Msg("photon injection skipped, document has no injection target")
		return nil
	}
	log.Debug().Str("filter", photonFilter(mods)).Msg("photon inverter applied")
	return nil
}

// Remove implements Strategy. Idempotent: deleting an absent block is a
// no-op.
func (p *PhotonInverter) Remove(doc *dom.Document) {
	doc.RemoveStyle(PhotonMarker)
}

func photonCSS(mods Modifiers) string {
	base := "#fdfdfd"
	if mods.AMOLED {
		// Inverts to true black.
		base = "#ffffff"
	}
	return fmt.Sprintf(`html {
  filter: %s;
  background: %s !important;
}
img:not([src$=".svg"]), video, picture, canvas {
  filter: invert(100%%) hue-rotate(180deg);
}`, photonFilter(mods), base)
}

// photonFilter derives the page filter from the modifiers. Blue-shift is
// approximated with sepia, which warms the page by stripping blue.
func photonFilter(mods Modifiers) string {
	warmth := mods.Sepia
	if mods.BlueShift > warmth {
		warmth = mods.BlueShift
	}
	return fmt.Sprintf(
		"invert(100%%) hue-rotate(180deg) brightness(%d%%) contrast(%d%%) sepia(%d%%) grayscale(%d%%)",
		mods.Brightness, mods.Contrast, warmth, mods.Grayscale)
}
