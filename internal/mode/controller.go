// Package mode owns which theming strategy is active on a document. It is
// a two-state machine, Empty or Applied(kind), whose single invariant is
// that a strategy's artifacts never coexist with another's: teardown
// always completes before a different strategy is set up.
package mode

import (
	"context"
	"fmt"

	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/logging"
	"github.com/bnema/umbra/internal/strategy"
)

// Factory resolves a strategy kind to a fresh instance. Resolution happens
// once per mode change; instances are never reused after teardown.
type Factory func(kind strategy.Kind) strategy.Strategy

// Controller manages the one active strategy for a single document.
type Controller struct {
	doc     *dom.Document
	factory Factory
	active  strategy.Strategy
}

// New creates a controller for the document. The factory must not be nil.
func New(doc *dom.Document, factory Factory) *Controller {
	return &Controller{doc: doc, factory: factory}
}

// Active returns the active strategy kind, ok=false in the Empty state.
func (c *Controller) Active() (strategy.Kind, bool) {
	if c.active == nil {
		return 0, false
	}
	return c.active.Kind(), true
}

// SetMode switches the document to the given strategy: the current one is
// fully torn down first, then the target is constructed and applied.
func (c *Controller) SetMode(ctx context.Context, kind strategy.Kind, mods strategy.Modifiers) error {
	ctx = logging.WithStrategy(ctx, kind.String())
	log := logging.FromContext(ctx)

	if c.active != nil {
		log.Debug().Str("from", c.active.Kind().String()).Msg("switching strategy")
		c.active.Remove(c.doc)
		c.active = nil
	}

	s := c.factory(kind)
	if err := s.Apply(ctx, c.doc, mods); err != nil {
		// A failed apply must not leave a half-applied strategy behind.
		s.Remove(c.doc)
		return fmt.Errorf("failed to apply strategy %s: %w", kind, err)
	}
	c.active = s
	return nil
}

// Clear tears down the active strategy, transitioning to Empty. No-op when
// already Empty.
func (c *Controller) Clear(ctx context.Context) {
	if c.active == nil {
		return
	}
	logging.FromContext(ctx).Debug().Str("strategy", c.active.Kind().String()).Msg("clearing strategy")
	c.active.Remove(c.doc)
	c.active = nil
}

// Refresh re-applies the active strategy with new modifiers, without a
// teardown/apply cycle. Used when only numeric parameters changed, such as
// the optimizer feeding back a contrast suggestion. Returns an error in
// the Empty state.
func (c *Controller) Refresh(ctx context.Context, mods strategy.Modifiers) error {
	if c.active == nil {
		return fmt.Errorf("no active strategy to refresh")
	}
	if err := c.active.Apply(ctx, c.doc, mods); err != nil {
		return fmt.Errorf("failed to refresh strategy %s: %w", c.active.Kind(), err)
	}
	return nil
}
