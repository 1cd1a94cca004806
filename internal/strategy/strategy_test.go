package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countMarkers(rendered, marker string) int {
	return strings.Count(rendered, marker)
}

func TestKindRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindPhotonInverter, KindDOMWalker, KindChromaSemantic} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("nonsense")
	assert.Error(t, err)
}

func TestNewDispatchesOnKind(t *testing.T) {
	opts := Options{}
	assert.Equal(t, KindPhotonInverter, New(KindPhotonInverter, opts).Kind())
	assert.Equal(t, KindDOMWalker, New(KindDOMWalker, opts).Kind())
	assert.Equal(t, KindChromaSemantic, New(KindChromaSemantic, opts).Kind())
}

func TestModifiersClamped(t *testing.T) {
	m := Modifiers{Brightness: 300, Contrast: 1, Sepia: -4, Grayscale: 150, BlueShift: 101}
	c := m.Clamped()

	assert.Equal(t, MaxBrightness, c.Brightness)
	assert.Equal(t, MinContrast, c.Contrast)
	assert.Equal(t, 0, c.Sepia)
	assert.Equal(t, 100, c.Grayscale)
	assert.Equal(t, 100, c.BlueShift)
}

func TestModifiersFingerprintDistinguishesSets(t *testing.T) {
	a := DefaultModifiers()
	b := DefaultModifiers()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Contrast = 120
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	b = DefaultModifiers()
	b.AMOLED = true
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
