package optimize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/umbra/internal/dom"
)

const sampledPage = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body style="background-color: #1a1a1a; color: #cccccc">
<h1>Heading</h1>
<p>First paragraph.</p>
<p style="color: #777777">Dim paragraph.</p>
<div><span>nested text</span></div>
<script>var ignored = true;</script>
<div></div>
</body></html>`

func TestSampleCollectsTextPairs(t *testing.T) {
	doc, err := dom.ParseString(sampledPage)
	require.NoError(t, err)

	pairs := Sample(doc, MaxSamples)
	require.NotEmpty(t, pairs)

	for _, p := range pairs {
		assert.NotEmpty(t, p.Foreground)
		assert.NotEmpty(t, p.Background)
	}

	// h1, two paragraphs, and the span carry text; bare divs and the
	// script do not.
	assert.Len(t, pairs, 4)
}

func TestSampleHonorsCap(t *testing.T) {
	doc, err := dom.ParseString(sampledPage)
	require.NoError(t, err)

	pairs := Sample(doc, 2)
	assert.Len(t, pairs, 2)

	// Out-of-range caps collapse to the batch maximum.
	assert.Equal(t, len(Sample(doc, 0)), len(Sample(doc, MaxSamples+1)))
}

func waitSuggestion(t *testing.T, ch <-chan Suggestion) Suggestion {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("analyzer did not reply")
		return Suggestion{}
	}
}

func TestAnalyzerSuggestsBoostForLowContrast(t *testing.T) {
	a := NewAnalyzer(context.Background())
	defer a.Close()

	// Gray-on-gray sits well below the 4.5 comfort floor.
	pairs := []Pair{
		{Foreground: "#777777", Background: "#555555"},
		{Foreground: "#808080", Background: "#606060"},
		{Foreground: "#6a6a6a", Background: "#505050"},
	}
	s := waitSuggestion(t, a.Analyze(pairs))
	require.True(t, s.Suggested)
	assert.Greater(t, s.Contrast, 110)
}

func TestAnalyzerStaysQuietInComfortBand(t *testing.T) {
	a := NewAnalyzer(context.Background())
	defer a.Close()

	// Roughly 7:1, comfortably between 4.5 and 9.
	pairs := []Pair{
		{Foreground: "#c0c0c0", Background: "#222222"},
		{Foreground: "#bbbbbb", Background: "#262626"},
	}
	s := waitSuggestion(t, a.Analyze(pairs))
	assert.False(t, s.Suggested)
}

func TestAnalyzerEasesHarshContrast(t *testing.T) {
	a := NewAnalyzer(context.Background())
	defer a.Close()

	pairs := []Pair{
		{Foreground: "#ffffff", Background: "#000000"},
		{Foreground: "white", Background: "black"},
	}
	s := waitSuggestion(t, a.Analyze(pairs))
	require.True(t, s.Suggested)
	assert.Equal(t, 100, s.Contrast)
}

func TestAnalyzerSkipsUnparseablePairs(t *testing.T) {
	a := NewAnalyzer(context.Background())
	defer a.Close()

	s := waitSuggestion(t, a.Analyze([]Pair{
		{Foreground: "var(--nope)", Background: "gradient(red)"},
	}))
	assert.False(t, s.Suggested)
}

func TestAnalyzerEmptyBatch(t *testing.T) {
	a := NewAnalyzer(context.Background())
	defer a.Close()

	s := waitSuggestion(t, a.Analyze(nil))
	assert.False(t, s.Suggested)
}

func TestAnalyzerCloseDrainsCallers(t *testing.T) {
	a := NewAnalyzer(context.Background())

	ch := a.Analyze([]Pair{{Foreground: "#777777", Background: "#555555"}})
	a.Close()

	// Whether the request was answered or drained, the caller gets a
	// reply either way.
	waitSuggestion(t, ch)
}
