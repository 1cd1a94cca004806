package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/umbra/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "umbra.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	brightness := 85
	enabled := false
	require.NoError(t, s.Put(ctx, "https://www.example.com/page", config.OriginOverride{
		Enabled:    &enabled,
		Strategy:   "photon-inverter",
		Brightness: &brightness,
	}))

	// Lookup goes through the same normalization as Put.
	o, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, o.Enabled)
	assert.False(t, *o.Enabled)
	assert.Equal(t, "photon-inverter", o.Strategy)
	require.NotNil(t, o.Brightness)
	assert.Equal(t, 85, *o.Brightness)
	assert.Nil(t, o.Contrast)
	assert.Nil(t, o.AMOLED)
}

func TestGetMissingOrigin(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get(context.Background(), "unknown.org")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, second := 80, 110
	require.NoError(t, s.Put(ctx, "example.com", config.OriginOverride{Brightness: &first}))
	require.NoError(t, s.Put(ctx, "example.com", config.OriginOverride{Brightness: &second}))

	o, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 110, *o.Brightness)

	overrides, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, overrides, 1)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "example.com", config.OriginOverride{Strategy: "dom-walker"}))
	require.NoError(t, s.Delete(ctx, "example.com"))
	require.NoError(t, s.Delete(ctx, "example.com"))

	_, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMergeIntoPrefersFileOverrides(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stored := 70
	require.NoError(t, s.Put(ctx, "a.com", config.OriginOverride{Brightness: &stored}))
	require.NoError(t, s.Put(ctx, "b.com", config.OriginOverride{Strategy: "dom-walker"}))

	fromFile := 120
	settings := config.DefaultSettings()
	settings.Origins = map[string]config.OriginOverride{
		"a.com": {Brightness: &fromFile},
	}

	require.NoError(t, s.MergeInto(ctx, &settings))

	assert.Equal(t, 120, *settings.Origins["a.com"].Brightness)
	assert.Equal(t, "dom-walker", settings.Origins["b.com"].Strategy)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
