package grounding

import (
	"strings"
	"unicode"
)

// LocalAnalysis grounds summary words against the source text using the stem
// matcher alone, with no lemmatizer round trip. The verdict is weaker than
// the service's (surface forms instead of lemmas, no part of speech) and is
// used as an offline pre-filter.
func LocalAnalysis(sourceText, summaryText string) []WordAnalysis {
	sourceWords := tokenize(sourceText)
	summaryWords := tokenize(summaryText)

	analysis := make([]WordAnalysis, 0, len(summaryWords))
	for _, word := range summaryWords {
		lowered := strings.ToLower(word)
		found := false
		for _, candidate := range sourceWords {
			if IsSimilar(lowered, strings.ToLower(candidate)) {
				found = true
				break
			}
		}
		analysis = append(analysis, WordAnalysis{
			Word:            word,
			Lemma:           lowered,
			POS:             "X",
			FoundInOriginal: found,
		})
	}
	return analysis
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
