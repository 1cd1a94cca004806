package mode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/schedule"
	"github.com/bnema/umbra/internal/strategy"
)

const page = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body style="background-color: #ffffff; color: #222222"><p>text</p></body></html>`

func newController(t *testing.T) (*Controller, *dom.Document, *schedule.Scheduler) {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	sched := schedule.New()
	c := New(doc, func(kind strategy.Kind) strategy.Strategy {
		return strategy.New(kind, strategy.Options{Scheduler: sched})
	})
	return c, doc, sched
}

func TestControllerStartsEmpty(t *testing.T) {
	c, _, _ := newController(t)
	_, ok := c.Active()
	assert.False(t, ok)
}

func TestSetModeAppliesStrategy(t *testing.T) {
	c, doc, _ := newController(t)

	require.NoError(t, c.SetMode(context.Background(), strategy.KindPhotonInverter, strategy.DefaultModifiers()))

	kind, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, strategy.KindPhotonInverter, kind)
	assert.True(t, doc.HasStyle(strategy.PhotonMarker))
}

func TestSwitchTearsDownPreviousStrategy(t *testing.T) {
	c, doc, sched := newController(t)
	ctx := context.Background()

	require.NoError(t, c.SetMode(ctx, strategy.KindPhotonInverter, strategy.DefaultModifiers()))
	require.True(t, doc.HasStyle(strategy.PhotonMarker))

	require.NoError(t, c.SetMode(ctx, strategy.KindDOMWalker, strategy.DefaultModifiers()))
	require.NoError(t, sched.Drain(ctx))

	// The inverter's block is gone before the walker's styles land.
	assert.False(t, doc.HasStyle(strategy.PhotonMarker))
	assert.NotEqual(t, "", doc.Body().StyleProperty("background-color"))

	kind, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, strategy.KindDOMWalker, kind)
}

func TestSwitchBackRestoresCleanly(t *testing.T) {
	c, doc, sched := newController(t)
	ctx := context.Background()

	before, err := doc.RenderString()
	require.NoError(t, err)

	require.NoError(t, c.SetMode(ctx, strategy.KindDOMWalker, strategy.DefaultModifiers()))
	require.NoError(t, sched.Drain(ctx))
	require.NoError(t, c.SetMode(ctx, strategy.KindChromaSemantic, strategy.DefaultModifiers()))
	require.NoError(t, sched.Drain(ctx))
	c.Clear(ctx)

	after, err := doc.RenderString()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, ok := c.Active()
	assert.False(t, ok)
}

func TestClearIsIdempotent(t *testing.T) {
	c, _, _ := newController(t)
	ctx := context.Background()
	c.Clear(ctx)
	c.Clear(ctx)
	_, ok := c.Active()
	assert.False(t, ok)
}

func TestRefreshRequiresActiveStrategy(t *testing.T) {
	c, _, _ := newController(t)
	err := c.Refresh(context.Background(), strategy.DefaultModifiers())
	assert.Error(t, err)
}

func TestRefreshKeepsStrategyActive(t *testing.T) {
	c, doc, sched := newController(t)
	ctx := context.Background()

	require.NoError(t, c.SetMode(ctx, strategy.KindPhotonInverter, strategy.DefaultModifiers()))

	mods := strategy.DefaultModifiers()
	mods.Contrast = 130
	require.NoError(t, c.Refresh(ctx, mods))
	require.NoError(t, sched.Drain(ctx))

	out, err := doc.RenderString()
	require.NoError(t, err)
	assert.Contains(t, out, "contrast(130%)")

	kind, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, strategy.KindPhotonInverter, kind)
}

type failingStrategy struct {
	removed int
}

func (*failingStrategy) Kind() strategy.Kind { return strategy.KindDOMWalker }
func (*failingStrategy) Apply(context.Context, *dom.Document, strategy.Modifiers) error {
	return errors.New("boom")
}
func (f *failingStrategy) Remove(*dom.Document) { f.removed++ }

func TestFailedApplyLeavesControllerEmpty(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	failing := &failingStrategy{}
	c := New(doc, func(strategy.Kind) strategy.Strategy { return failing })

	err = c.SetMode(context.Background(), strategy.KindDOMWalker, strategy.DefaultModifiers())
	require.Error(t, err)

	// The half-applied strategy was torn down and nothing is active.
	assert.Equal(t, 1, failing.removed)
	_, ok := c.Active()
	assert.False(t, ok)
}
