package grounding

// Cache memoizes lemmatizer verdicts keyed by the exact (source, summary)
// text pair. Keys are not normalized: texts differing by whitespace are
// distinct entries. Clear wipes the whole cache; it is invoked whenever the
// active record changes, since grounding is meaningless across documents.
//
// Implementations must keep Get/Put/Clear atomic with respect to each other
// when used from multiple goroutines.
type Cache interface {
	Get(sourceText, summaryText string) ([]WordAnalysis, bool)
	Put(sourceText, summaryText string, analysis []WordAnalysis)
	Clear()
}
