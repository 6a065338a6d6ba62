package grounding

import (
	"fmt"
	"strings"
)

// BuildSpans reconstructs the summary as a sequence of plain and annotated
// spans suitable for highlighted rendering.
//
// A cursor scans the text left to right. Each analysis entry is located via a
// case-sensitive substring search at or after the cursor; entries that cannot
// be found are skipped without moving the cursor, which tolerates drift
// between the lemmatizer output and a summary the user has since edited.
// Duplicate words are matched in analysis order, not by semantic alignment.
func BuildSpans(summaryText string, analysis []WordAnalysis) []HighlightSpan {
	if len(analysis) == 0 {
		return []HighlightSpan{{Text: summaryText}}
	}

	spans := make([]HighlightSpan, 0, 2*len(analysis)+1)
	cursor := 0
	for _, entry := range analysis {
		if entry.Word == "" {
			continue
		}
		offset := strings.Index(summaryText[cursor:], entry.Word)
		if offset < 0 {
			continue
		}
		start := cursor + offset
		if start > cursor {
			spans = append(spans, HighlightSpan{Text: summaryText[cursor:start]})
		}
		class := ClassUngrounded
		if entry.FoundInOriginal {
			class = ClassGrounded
		}
		spans = append(spans, HighlightSpan{
			Text:      entry.Word,
			ClassName: class,
			Title:     fmt.Sprintf("%s (%s)", entry.Lemma, entry.POS),
		})
		cursor = start + len(entry.Word)
	}
	if cursor < len(summaryText) {
		spans = append(spans, HighlightSpan{Text: summaryText[cursor:]})
	}
	return spans
}
