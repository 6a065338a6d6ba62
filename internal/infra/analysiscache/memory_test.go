package analysiscache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matevzk/povzetek/internal/domain/grounding"
)

func TestMemoryCacheGetAfterPut(t *testing.T) {
	cache := NewMemoryCache()
	verdict := []grounding.WordAnalysis{{Word: "Pes", Lemma: "pes", POS: "NOUN", FoundInOriginal: true}}

	cache.Put("izvirnik", "povzetek", verdict)

	got, ok := cache.Get("izvirnik", "povzetek")
	require.True(t, ok)
	require.Equal(t, verdict, got)
}

func TestMemoryCacheMissOnUnsetKey(t *testing.T) {
	cache := NewMemoryCache()

	_, ok := cache.Get("izvirnik", "povzetek")
	require.False(t, ok)
}

func TestMemoryCacheKeysAreExactNotNormalized(t *testing.T) {
	cache := NewMemoryCache()
	cache.Put("izvirnik", "povzetek", nil)

	// Whitespace makes a different key.
	_, ok := cache.Get("izvirnik", "povzetek ")
	require.False(t, ok)
	_, ok = cache.Get(" izvirnik", "povzetek")
	require.False(t, ok)
}

func TestMemoryCacheClearDropsEverything(t *testing.T) {
	cache := NewMemoryCache()
	cache.Put("a", "b", []grounding.WordAnalysis{{Word: "x"}})
	cache.Put("c", "d", []grounding.WordAnalysis{{Word: "y"}})

	cache.Clear()

	_, ok := cache.Get("a", "b")
	require.False(t, ok)
	_, ok = cache.Get("c", "d")
	require.False(t, ok)
}
