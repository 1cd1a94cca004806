package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/umbra/internal/dom"
)

const lightPage = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body style="background-color: #ffffff; color: #111111">
<h1>Title</h1>
<p>Some readable text.</p>
<img src="photo.jpg">
</body></html>`

func mustParse(t *testing.T, page string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	return doc
}

func TestPhotonApplyInjectsFilterBlock(t *testing.T) {
	doc := mustParse(t, lightPage)
	p := NewPhotonInverter()

	require.NoError(t, p.Apply(context.Background(), doc, DefaultModifiers()))
	assert.True(t, doc.HasStyle(PhotonMarker))

	out, err := doc.RenderString()
	require.NoError(t, err)
	assert.Contains(t, out, "invert(100%)")
	assert.Contains(t, out, "hue-rotate(180deg)")
	// Raster media gets re-inverted so photos stay positive.
	assert.Contains(t, out, `img:not([src$=".svg"])`)
	assert.Contains(t, out, "#fdfdfd")
}

func TestPhotonModifiersReachTheFilter(t *testing.T) {
	doc := mustParse(t, lightPage)
	p := NewPhotonInverter()

	mods := Modifiers{Brightness: 95, Contrast: 110, Sepia: 20, Grayscale: 10}
	require.NoError(t, p.Apply(context.Background(), doc, mods))

	out, err := doc.RenderString()
	require.NoError(t, err)
	assert.Contains(t, out, "brightness(95%)")
	assert.Contains(t, out, "contrast(110%)")
	assert.Contains(t, out, "sepia(20%)")
	assert.Contains(t, out, "grayscale(10%)")
}

func TestPhotonBlueShiftMapsToWarmth(t *testing.T) {
	doc := mustParse(t, lightPage)
	p := NewPhotonInverter()

	mods := DefaultModifiers()
	mods.BlueShift = 40
	require.NoError(t, p.Apply(context.Background(), doc, mods))

	out, err := doc.RenderString()
	require.NoError(t, err)
	assert.Contains(t, out, "sepia(40%)")
}

func TestPhotonAMOLEDBase(t *testing.T) {
	doc := mustParse(t, lightPage)
	p := NewPhotonInverter()

	mods := DefaultModifiers()
	mods.AMOLED = true
	require.NoError(t, p.Apply(context.Background(), doc, mods))

	out, err := doc.RenderString()
	require.NoError(t, err)
	// White inverts to true black.
	assert.Contains(t, out, "#ffffff")
}

func TestPhotonReapplyReplacesBlock(t *testing.T) {
	doc := mustParse(t, lightPage)
	p := NewPhotonInverter()
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, doc, DefaultModifiers()))
	mods := DefaultModifiers()
	mods.Brightness = 80
	require.NoError(t, p.Apply(ctx, doc, mods))

	out, err := doc.RenderString()
	require.NoError(t, err)
	assert.Equal(t, 1, countMarkers(out, PhotonMarker))
	assert.Contains(t, out, "brightness(80%)")
	assert.NotContains(t, out, "brightness(100%)")
}

func TestPhotonRemoveIsIdempotent(t *testing.T) {
	doc := mustParse(t, lightPage)
	p := NewPhotonInverter()

	before, err := doc.RenderString()
	require.NoError(t, err)

	require.NoError(t, p.Apply(context.Background(), doc, DefaultModifiers()))
	p.Remove(doc)
	p.Remove(doc)

	after, err := doc.RenderString()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.False(t, doc.HasStyle(PhotonMarker))
}
