package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerOriginalComputedIsStable(t *testing.T) {
	doc := mustParse(t, `<!DOCTYPE html>
<html><head></head><body style="background-color: #ffffff"><p>x</p></body></html>`)
	tr := newStyleTracker()
	body := doc.Body()

	orig := tr.originalComputed(body, "background-color")
	require.Equal(t, "#ffffff", orig)

	// Overwriting the inline style must not change what the tracker
	// reports as the page's original value.
	tr.setStyle(body, "background-color", "hsl(0, 0%, 7%)")
	assert.Equal(t, "#ffffff", tr.originalComputed(body, "background-color"))
}

func TestTrackerRestoreDropsAddedProperties(t *testing.T) {
	doc := mustParse(t, `<!DOCTYPE html>
<html><head></head><body><p id="p">x</p></body></html>`)
	tr := newStyleTracker()

	var p = doc.Body().Children()[0]
	tr.setStyle(p, "color", "#e8e6e3")
	require.Equal(t, "#e8e6e3", p.StyleProperty("color"))

	tr.restore(doc)
	assert.Equal(t, "", p.StyleProperty("color"))
	assert.False(t, p.HasAttr("style"))
}

func TestTrackerRestorePutsBackOriginalValues(t *testing.T) {
	doc := mustParse(t, `<!DOCTYPE html>
<html><head></head><body style="color: #123456; margin: 0"><p>x</p></body></html>`)
	tr := newStyleTracker()
	body := doc.Body()

	tr.setStyle(body, "color", "#ffffff")
	tr.setStyle(body, "color", "#eeeeee") // second write, original kept
	tr.restore(doc)

	assert.Equal(t, "#123456", body.StyleProperty("color"))
	// Untouched properties survive.
	assert.Equal(t, "0", body.StyleProperty("margin"))
}
