package grounding

import "strings"

// Inflectional endings stripped when forming stem candidates. The list is
// existential ("any stem of A matches any stem of B"), so the repeated "ih"
// and "em" entries are harmless and kept as found in the original tuning.
var suffixes = []string{
	"ega", "emu", "ih", "imi", "im", "em", "om", "oma", "ov", "ev",
	"ami", "ah", "ji", "ja", "je", "jo", "ju", "ih", "em",
	"a", "e", "i", "o", "u",
}

// stemCandidates returns the word itself plus the word with every matching
// suffix removed. A word can end in several listed suffixes; all resulting
// stems are kept with no precedence between them.
func stemCandidates(word string) []string {
	candidates := []string{word}
	for _, suffix := range suffixes {
		if len(word) > len(suffix) && strings.HasSuffix(word, suffix) {
			candidates = append(candidates, strings.TrimSuffix(word, suffix))
		}
	}
	return candidates
}

// IsSimilar reports whether two word forms look like morphological variants
// of the same root. Pure and deterministic.
func IsSimilar(wordA, wordB string) bool {
	for _, a := range stemCandidates(wordA) {
		for _, b := range stemCandidates(wordB) {
			if stemsMatch(a, b) {
				return true
			}
		}
	}
	return false
}

func stemsMatch(a, b string) bool {
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	// Short stems collapse too easily; require an exact match below four
	// letters.
	if maxLen <= 3 {
		return false
	}

	// Position-wise mismatch over the shared prefix plus the length delta.
	// Deliberately not Levenshtein: insertions shift every later position
	// into a mismatch, and the grounding view was tuned around that.
	shared := len(ra)
	if len(rb) < shared {
		shared = len(rb)
	}
	distance := 0
	for i := 0; i < shared; i++ {
		if ra[i] != rb[i] {
			distance++
		}
	}
	if len(ra) > len(rb) {
		distance += len(ra) - len(rb)
	} else {
		distance += len(rb) - len(ra)
	}
	return distance <= maxLen*3/10
}
