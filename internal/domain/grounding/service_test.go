package grounding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeUsesLemmatizerAndCachesResult(t *testing.T) {
	verdict := []WordAnalysis{
		{Word: "Pes", Lemma: "pes", POS: "NOUN", FoundInOriginal: true},
	}
	client := &stubAnalyzer{analysis: verdict}
	cache := newStubCache()
	svc := NewService(client, cache, newTestLogger())

	req := Request{OriginalText: "Pes teka po travniku.", SummaryText: "Pes."}

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, verdict, result.Analysis)
	require.False(t, result.Degraded)
	require.Equal(t, 1, client.calls)

	// Second analysis of the same pair is served from the cache.
	result, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, verdict, result.Analysis)
	require.Equal(t, 1, client.calls)
}

func TestAnalyzeRejectsEmptySummary(t *testing.T) {
	svc := NewService(&stubAnalyzer{}, newStubCache(), newTestLogger())

	_, err := svc.Analyze(context.Background(), Request{OriginalText: "besedilo", SummaryText: "   "})
	require.Error(t, err)
}

func TestAnalyzeDegradesToPlainTextOnLemmatizerFailure(t *testing.T) {
	client := &stubAnalyzer{err: errors.New("service unavailable")}
	svc := NewService(client, newStubCache(), newTestLogger())

	result, err := svc.Analyze(context.Background(), Request{OriginalText: "a", SummaryText: "Pes teče."})
	require.NoError(t, err)
	require.True(t, result.Degraded)
	require.Empty(t, result.Analysis)
	require.Equal(t, []HighlightSpan{{Text: "Pes teče."}}, result.Spans)
}

func TestActivateRecordClearsCache(t *testing.T) {
	client := &stubAnalyzer{analysis: []WordAnalysis{{Word: "Pes", Lemma: "pes", POS: "NOUN"}}}
	cache := newStubCache()
	svc := NewService(client, cache, newTestLogger())

	req := Request{OriginalText: "izvirnik", SummaryText: "Pes"}
	_, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	svc.ActivateRecord(42)

	_, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2, client.calls)
}

func TestAnalyzeLocalGroundsWithStemMatcher(t *testing.T) {
	svc := NewService(&stubAnalyzer{}, newStubCache(), newTestLogger())

	result := svc.AnalyzeLocal(Request{
		OriginalText: "Pes teka po travniku.",
		SummaryText:  "Pes po mestu.",
	})

	require.Len(t, result.Analysis, 3)
	require.True(t, result.Analysis[0].FoundInOriginal)  // Pes, exact
	require.True(t, result.Analysis[1].FoundInOriginal)  // po, exact
	require.False(t, result.Analysis[2].FoundInOriginal) // mestu, no source stem

	var rebuilt string
	for _, span := range result.Spans {
		rebuilt += span.Text
	}
	require.Equal(t, "Pes po mestu.", rebuilt)
}

type stubAnalyzer struct {
	analysis []WordAnalysis
	err      error
	calls    int
}

func (s *stubAnalyzer) AnalyzeText(_ context.Context, _, _ string) ([]WordAnalysis, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

type stubCache struct {
	entries map[[2]string][]WordAnalysis
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[[2]string][]WordAnalysis)}
}

func (c *stubCache) Get(source, summary string) ([]WordAnalysis, bool) {
	analysis, ok := c.entries[[2]string{source, summary}]
	return analysis, ok
}

func (c *stubCache) Put(source, summary string, analysis []WordAnalysis) {
	c.entries[[2]string{source, summary}] = analysis
}

func (c *stubCache) Clear() {
	c.entries = make(map[[2]string][]WordAnalysis)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
