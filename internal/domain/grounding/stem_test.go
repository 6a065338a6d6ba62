package grounding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSimilarReflexive(t *testing.T) {
	for _, word := range []string{"pes", "knjiga", "travniku", "č", ""} {
		require.True(t, IsSimilar(word, word), "word %q should match itself", word)
	}
}

func TestIsSimilarSuffixStripping(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"knjigah", "knjiga", true},
		{"knjigah", "knjigami", true},
		{"travniku", "travnik", true},
		{"lepega", "lep", true},
		{"pes", "teče", false},
		{"miza", "okno", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, IsSimilar(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
		require.Equal(t, tc.want, IsSimilar(tc.b, tc.a), "%q vs %q (swapped)", tc.b, tc.a)
	}
}

func TestIsSimilarShortStemsRequireExactMatch(t *testing.T) {
	// Below four letters the bounded-difference branch is disabled; only
	// equality or containment can match.
	require.False(t, IsSimilar("dan", "don"))
	require.True(t, IsSimilar("dan", "dan"))
}

func TestIsSimilarBoundedDifference(t *testing.T) {
	// One mismatched position in an eight letter pair: distance 1 <= floor(8*0.3).
	require.True(t, IsSimilar("barvanje", "barvanke"))
	// Four mismatches in an eight letter pair exceed the allowed distance.
	require.False(t, IsSimilar("barvanje", "barcipke"))
}

func TestIsSimilarLengthDeltaCountsTowardDistance(t *testing.T) {
	// Shared prefix matches exactly but the three-letter tail alone
	// exceeds floor(10*0.3) only when combined with a mismatch.
	require.True(t, IsSimilar("gledališče", "gledali"))
}

func TestStemCandidatesKeepEveryMatchingSuffix(t *testing.T) {
	candidates := stemCandidates("knjigami")
	require.Contains(t, candidates, "knjigami")
	require.Contains(t, candidates, "knjig")   // "ami" stripped
	require.Contains(t, candidates, "knjigam") // "i" stripped
}
