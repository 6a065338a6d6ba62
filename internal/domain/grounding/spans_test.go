package grounding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSpansEmptyAnalysisReturnsWholeText(t *testing.T) {
	spans := BuildSpans("Pes teče.", nil)
	require.Equal(t, []HighlightSpan{{Text: "Pes teče."}}, spans)
}

func TestBuildSpansScenario(t *testing.T) {
	analysis := []WordAnalysis{
		{Word: "Pes", Lemma: "pes", POS: "NOUN", FoundInOriginal: true},
		{Word: "teče", Lemma: "teči", POS: "VERB", FoundInOriginal: false},
	}

	spans := BuildSpans("Pes teče.", analysis)

	require.Equal(t, []HighlightSpan{
		{Text: "Pes", ClassName: ClassGrounded, Title: "pes (NOUN)"},
		{Text: " "},
		{Text: "teče", ClassName: ClassUngrounded, Title: "teči (VERB)"},
		{Text: "."},
	}, spans)
}

func TestBuildSpansRoundTrip(t *testing.T) {
	text := "Vsaka beseda šteje, vsaka beseda ostane."
	analysis := []WordAnalysis{
		{Word: "Vsaka", Lemma: "vsak", POS: "DET", FoundInOriginal: true},
		{Word: "beseda", Lemma: "beseda", POS: "NOUN", FoundInOriginal: true},
		{Word: "šteje", Lemma: "šteti", POS: "VERB", FoundInOriginal: false},
		{Word: "vsaka", Lemma: "vsak", POS: "DET", FoundInOriginal: true},
		{Word: "beseda", Lemma: "beseda", POS: "NOUN", FoundInOriginal: true},
		{Word: "ostane", Lemma: "ostati", POS: "VERB", FoundInOriginal: false},
	}

	spans := BuildSpans(text, analysis)

	var rebuilt strings.Builder
	for _, span := range spans {
		rebuilt.WriteString(span.Text)
	}
	require.Equal(t, text, rebuilt.String())
}

func TestBuildSpansSkipsWordsNotInText(t *testing.T) {
	// The user edited "teče" away after the analysis ran; the stale entry
	// is dropped without emitting a span or moving the cursor.
	analysis := []WordAnalysis{
		{Word: "Pes", Lemma: "pes", POS: "NOUN", FoundInOriginal: true},
		{Word: "teče", Lemma: "teči", POS: "VERB", FoundInOriginal: false},
		{Word: "spi", Lemma: "spati", POS: "VERB", FoundInOriginal: true},
	}

	spans := BuildSpans("Pes spi.", analysis)

	require.Equal(t, []HighlightSpan{
		{Text: "Pes", ClassName: ClassGrounded, Title: "pes (NOUN)"},
		{Text: " "},
		{Text: "spi", ClassName: ClassGrounded, Title: "spati (VERB)"},
		{Text: "."},
	}, spans)
}

func TestBuildSpansDuplicatesMatchLeftToRight(t *testing.T) {
	analysis := []WordAnalysis{
		{Word: "dan", Lemma: "dan", POS: "NOUN", FoundInOriginal: true},
		{Word: "dan", Lemma: "dan", POS: "NOUN", FoundInOriginal: false},
	}

	spans := BuildSpans("dan za dan", analysis)

	require.Equal(t, []HighlightSpan{
		{Text: "dan", ClassName: ClassGrounded, Title: "dan (NOUN)"},
		{Text: " za "},
		{Text: "dan", ClassName: ClassUngrounded, Title: "dan (NOUN)"},
	}, spans)
}

func TestBuildSpansCaseSensitiveSearch(t *testing.T) {
	analysis := []WordAnalysis{
		{Word: "pes", Lemma: "pes", POS: "NOUN", FoundInOriginal: true},
	}

	spans := BuildSpans("Pes spi.", analysis)

	// Lowercase "pes" never occurs; the whole text remains plain.
	require.Equal(t, []HighlightSpan{{Text: "Pes spi."}}, spans)
}
