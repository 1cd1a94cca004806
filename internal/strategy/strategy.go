// Package strategy implements the three interchangeable theming
// strategies: the filter-based Photon Inverter, the traversal-based DOM
// Walker, and the semantic Chroma engine. A strategy owns all of its
// bookkeeping (caches, processed sets, mutation subscriptions); everything
// is built on Apply and torn down on Remove so no state survives a
// strategy switch.
package strategy

import (
	"context"
	"fmt"

	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/schedule"
)

// Kind enumerates the three strategies. The set is closed: dispatch happens
// on this enum, never on free-form identifiers.
type Kind int

const (
	KindPhotonInverter Kind = iota
	KindDOMWalker
	KindChromaSemantic
)

// String returns the stable identifier used in settings and markers.
func (k Kind) String() string {
	switch k {
	case KindPhotonInverter:
		return "photon-inverter"
	case KindDOMWalker:
		return "dom-walker"
	case KindChromaSemantic:
		return "chroma-semantic"
	default:
		return "unknown"
	}
}

// ParseKind resolves a settings identifier to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "photon-inverter":
		return KindPhotonInverter, nil
	case "dom-walker":
		return KindDOMWalker, nil
	case "chroma-semantic":
		return KindChromaSemantic, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", s)
	}
}

// Strategy is the uniform capability interface the mode controller drives.
// Apply may complete asynchronously through the scheduler; Remove is
// synchronous and must be safe to call repeatedly, including after an
// Apply that never finished.
type Strategy interface {
	Kind() Kind
	Apply(ctx context.Context, doc *dom.Document, mods Modifiers) error
	Remove(doc *dom.Document)
}

// Options carries the collaborators strategies share.
type Options struct {
	// Scheduler drives batched traversal. Required by the traversal
	// strategies; the Photon Inverter ignores it.
	Scheduler *schedule.Scheduler

	// OnFallback is invoked at most once per page load when a strategy
	// degrades to a cheaper one. Optional.
	OnFallback func(reason string)
}

// New constructs the strategy for a kind. Called once per mode change; the
// returned instance must not be reused across documents.
func New(kind Kind, opts Options) Strategy {
	switch kind {
	case KindDOMWalker:
		return NewDOMWalker(opts.Scheduler)
	case KindChromaSemantic:
		return NewChromaSemantic(opts.Scheduler, opts.OnFallback)
	default:
		return NewPhotonInverter()
	}
}

// visual reports whether an element participates in theming at all.
func visual(el *dom.Element) bool {
	switch el.Tag() {
	case "script", "style", "noscript", "template", "meta", "link", "br", "wbr":
		return false
	}
	return true
}
