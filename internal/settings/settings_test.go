package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var limits = Limits{
	MinBrightness: 5, MaxBrightness: 255, DefaultBrightness: 128,
	MinLEDs: 1, MaxLEDs: 1000, DefaultLEDs: 100,
	Patterns: 10,
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "settings.toml")

	s, err := OpenFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, 7, s.Get(KeyPattern, 7), "missing file yields defaults")

	require.NoError(t, Save(s, limits, Settings{Pattern: 3, Brightness: 200, NumLEDs: 250}))

	// simulated restart
	s2, err := OpenFile(path, Namespace)
	require.NoError(t, err)
	got := Load(s2, limits, zerolog.Nop())
	assert.Equal(t, Settings{Pattern: 3, Brightness: 200, NumLEDs: 250}, got)
}

func TestFileStoreKeepsOtherNamespaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("[other]\nvolume = 11\n"), 0o644))

	s, err := OpenFile(path, Namespace)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyBrightness, 42))

	other, err := OpenFile(path, "other")
	require.NoError(t, err)
	assert.Equal(t, 11, other.Get("volume", 0))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), Namespace)
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0o644))
	_, err := OpenFile(path, Namespace)
	assert.Error(t, err)
}

func TestLoadResetsOutOfRange(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Set(KeyPattern, 99))
	require.NoError(t, s.Set(KeyBrightness, 2))
	require.NoError(t, s.Set(KeyNumLEDs, 5000))

	got := Load(s, limits, zerolog.Nop())
	assert.Equal(t, limits.Defaults(), got)
}

func TestClamp(t *testing.T) {
	for _, v := range []int{-10, 0, 4, 5, 128, 255, 256, 10000} {
		b := limits.ClampBrightness(v)
		assert.GreaterOrEqual(t, b, limits.MinBrightness)
		assert.LessOrEqual(t, b, limits.MaxBrightness)
	}
	assert.Equal(t, 1, limits.ClampLEDs(-4))
	assert.Equal(t, 1000, limits.ClampLEDs(1001))
	assert.Equal(t, 640, limits.ClampLEDs(640))
}

func TestThrottledWrites(t *testing.T) {
	inner := NewMemStore()
	now := time.Unix(1000, 0)
	th := NewThrottled(inner, time.Second, zerolog.Nop()).WithClock(func() time.Time { return now })

	require.NoError(t, th.Set(KeyBrightness, 10))
	assert.Equal(t, 1, inner.Writes, "first write goes straight through")

	now = now.Add(200 * time.Millisecond)
	require.NoError(t, th.Set(KeyBrightness, 20))
	require.NoError(t, th.Set(KeyBrightness, 30))
	assert.Equal(t, 1, inner.Writes)
	assert.True(t, th.Dirty())
	assert.Equal(t, 30, th.Get(KeyBrightness, 0), "reads see pending value")
	assert.Equal(t, 10, inner.Get(KeyBrightness, 0))

	now = now.Add(time.Second)
	require.NoError(t, th.Sync())
	assert.Equal(t, 2, inner.Writes)
	assert.Equal(t, 30, inner.Get(KeyBrightness, 0))
	assert.False(t, th.Dirty())
}

func TestThrottledFlush(t *testing.T) {
	inner := NewMemStore()
	th := NewThrottled(inner, time.Hour, zerolog.Nop())
	require.NoError(t, th.Set(KeyPattern, 1))
	require.NoError(t, th.Set(KeyPattern, 2))
	require.NoError(t, th.Flush())
	assert.Equal(t, 2, inner.Get(KeyPattern, 0))
}
