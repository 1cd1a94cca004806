package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<style>
/* page styles */
body { background-color: #ffffff; color: #111111; }
.card { background-color: rgb(240, 240, 240); }
#hero { background-color: #2196f3; }
a { color: blue; }
:root { --accent: #ff5722; }
@media (max-width: 600px) { body { background-color: red; } }
</style>
<link rel="stylesheet" href="https://cdn.example.com/site.css">
</head>
<body>
<div class="card" id="hero">
  <p style="color: rgb(10, 20, 30)">hello</p>
  <a href="#">link</a>
  <span class="accented" style="color: var(--accent)">accent</span>
</div>
</body>
</html>`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src)
	require.NoError(t, err)
	return doc
}

func TestComputedStyle(t *testing.T) {
	doc := mustParse(t, samplePage)
	body := doc.Body()
	require.NotNil(t, body)

	assert.Equal(t, "#ffffff", body.ComputedStyle("background-color"))
	assert.Equal(t, "#111111", body.ComputedStyle("color"))

	var hero, para, link, accent *Element
	for _, el := range doc.BodyElements() {
		switch {
		case el.ID() == "hero":
			hero = el
		case el.Tag() == "p":
			para = el
		case el.Tag() == "a":
			link = el
		case el.HasClass("accented"):
			accent = el
		}
	}
	require.NotNil(t, hero)
	require.NotNil(t, para)
	require.NotNil(t, link)
	require.NotNil(t, accent)

	// The id rule outranks the class rule.
	assert.Equal(t, "#2196f3", hero.ComputedStyle("background-color"))
	// Inline style wins over everything.
	assert.Equal(t, "rgb(10, 20, 30)", para.ComputedStyle("color"))
	// Tag rule.
	assert.Equal(t, "blue", link.ComputedStyle("color"))
	// var() resolution against :root custom properties.
	assert.Equal(t, "#ff5722", accent.ComputedStyle("color"))
}

func TestColorInherits(t *testing.T) {
	doc := mustParse(t, `<html><body style="color: #222222"><div><span>deep</span></div></body></html>`)
	var span *Element
	for _, el := range doc.BodyElements() {
		if el.Tag() == "span" {
			span = el
		}
	}
	require.NotNil(t, span)
	assert.Equal(t, "#222222", span.ComputedStyle("color"))
	// background-color does not inherit.
	assert.Equal(t, "", span.ComputedStyle("background-color"))
}

func TestEffectiveBackground(t *testing.T) {
	doc := mustParse(t, `<html><body style="background-color: #101010"><div style="background-color: transparent"><p>x</p></div></body></html>`)
	var p *Element
	for _, el := range doc.BodyElements() {
		if el.Tag() == "p" {
			p = el
		}
	}
	require.NotNil(t, p)

	bg, ok := p.EffectiveBackground()
	require.True(t, ok)
	assert.Equal(t, "#101010", bg)
}

func TestEffectiveBackgroundSkipsZeroAlpha(t *testing.T) {
	doc := mustParse(t, `<html><body style="background-color: #101010"><div style="background-color: rgba(255, 255, 255, 0)"><p>x</p></div></body></html>`)
	var p *Element
	for _, el := range doc.BodyElements() {
		if el.Tag() == "p" {
			p = el
		}
	}
	require.NotNil(t, p)

	bg, ok := p.EffectiveBackground()
	require.True(t, ok)
	assert.Equal(t, "#101010", bg)
}

func TestEffectiveBackgroundAllTransparent(t *testing.T) {
	doc := mustParse(t, `<html><body><p>x</p></body></html>`)
	_, ok := doc.Body().EffectiveBackground()
	assert.False(t, ok)
}

func TestInlineStyleMutation(t *testing.T) {
	doc := mustParse(t, `<html><body><p style="color: red; margin: 0">x</p></body></html>`)
	var p *Element
	for _, el := range doc.BodyElements() {
		if el.Tag() == "p" {
			p = el
		}
	}
	require.NotNil(t, p)

	p.SetStyleProperty("color", "blue")
	assert.Equal(t, "blue", p.StyleProperty("color"))
	assert.Equal(t, "0", p.StyleProperty("margin"), "unrelated property preserved")

	p.SetStyleProperty("background-color", "#000")
	assert.Equal(t, "#000", p.StyleProperty("background-color"))

	p.RemoveStyleProperty("color")
	assert.Equal(t, "", p.StyleProperty("color"))

	p.RemoveStyleProperty("margin")
	p.RemoveStyleProperty("background-color")
	assert.False(t, p.HasAttr("style"), "empty style attribute is dropped")
}

func TestInjectAndRemoveStyle(t *testing.T) {
	doc := mustParse(t, samplePage)

	require.True(t, doc.InjectStyle("test-marker", "html { filter: invert(1); }"))
	assert.True(t, doc.HasStyle("test-marker"))

	// Re-injecting replaces rather than duplicates.
	require.True(t, doc.InjectStyle("test-marker", "html { filter: none; }"))
	out, err := doc.RenderString()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "test-marker"))

	assert.True(t, doc.RemoveStyle("test-marker"))
	assert.False(t, doc.HasStyle("test-marker"))
	// Removal is idempotent.
	assert.False(t, doc.RemoveStyle("test-marker"))
}

func TestInjectStyleNoHead(t *testing.T) {
	doc := mustParse(t, `<html><body><p>x</p></body></html>`)
	// html.Parse synthesizes a head, so injection still lands somewhere.
	assert.True(t, doc.InjectStyle("m", "body { color: red; }"))
	assert.True(t, doc.HasStyle("m"))
}

func TestSubscribeAndAppendFragment(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="feed"></div></body></html>`)
	var feed *Element
	for _, el := range doc.BodyElements() {
		if el.ID() == "feed" {
			feed = el
		}
	}
	require.NotNil(t, feed)

	var notified []*Element
	unsubscribe := doc.Subscribe(func(added []*Element) {
		notified = append(notified, added...)
	})

	added, err := doc.AppendFragment(feed, `<article><p>new post</p></article>`)
	require.NoError(t, err)
	require.Len(t, added, 2, "article and its descendant paragraph")
	assert.Len(t, notified, 2)

	unsubscribe()
	notified = nil
	_, err = doc.AppendFragment(feed, `<p>more</p>`)
	require.NoError(t, err)
	assert.Empty(t, notified, "unsubscribed callback must not fire")
}

func TestStylesheets(t *testing.T) {
	doc := mustParse(t, samplePage)
	sheets := doc.Stylesheets()
	require.Len(t, sheets, 2)

	assert.True(t, sheets[0].Inline)
	assert.NotEmpty(t, sheets[0].Rules)
	assert.True(t, sheets[1].Unreadable, "linked sheet content is not reachable")
	assert.Equal(t, "https://cdn.example.com/site.css", sheets[1].Href)

	props := doc.CustomProperties()
	assert.Equal(t, "#ff5722", props["--accent"])
}

func TestDepth(t *testing.T) {
	doc := mustParse(t, `<html><body><div><section><p>x</p></section></div></body></html>`)
	depths := map[string]int{}
	for _, el := range doc.BodyElements() {
		depths[el.Tag()] = el.Depth()
	}
	assert.Equal(t, 1, depths["div"])
	assert.Equal(t, 2, depths["section"])
	assert.Equal(t, 3, depths["p"])

	// The body anchors the scale: depth 0, one below its direct children.
	assert.Equal(t, 0, doc.Body().Depth())
}

func TestPresentationalAttributes(t *testing.T) {
	doc := mustParse(t, `<html><body bgcolor="#cccccc" text="#333333"><p>x</p></body></html>`)
	body := doc.Body()
	assert.Equal(t, "#cccccc", body.ComputedStyle("background-color"))
	assert.Equal(t, "#333333", body.ComputedStyle("color"))
}
