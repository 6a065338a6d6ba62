package grounding

// Span class names rendered by the frontend highlighter.
const (
	ClassGrounded   = "grounded"
	ClassUngrounded = "ungrounded"
)

// WordAnalysis is one word of the lemmatizer's verdict over a summary.
// The slice order corresponds to left-to-right occurrence in the summary text.
type WordAnalysis struct {
	Word            string `json:"word"`
	Lemma           string `json:"lemma"`
	POS             string `json:"pos"`
	FoundInOriginal bool   `json:"found_in_original"`
}

// HighlightSpan is a contiguous run of summary text. Plain spans carry only
// Text; annotated spans add the class and a "<lemma> (<pos>)" title.
type HighlightSpan struct {
	Text      string `json:"text"`
	ClassName string `json:"className,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Request is the incoming analysis payload.
type Request struct {
	OriginalText string `json:"original_text"`
	SummaryText  string `json:"summary_text"`
}

// Result bundles the per-word analysis with the renderable spans.
// Degraded is set when the lemmatizer was unreachable and the spans fall
// back to plain text.
type Result struct {
	Analysis []WordAnalysis  `json:"analysis"`
	Spans    []HighlightSpan `json:"spans"`
	Degraded bool            `json:"degraded,omitempty"`
}
