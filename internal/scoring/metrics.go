package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Metrics returns the word and character error rates of candidate against reference.
// Both are edit distances normalized by reference length and clamped to [0, 1].
func Metrics(candidate, reference string) (wer, cer float64) {
	return WER(candidate, reference), CER(candidate, reference)
}

// CER is the character error rate over whitespace-trimmed inputs.
func CER(candidate, reference string) float64 {
	ref := strings.TrimSpace(reference)
	cand := strings.TrimSpace(candidate)
	return rate(matchr.Levenshtein(ref, cand), utf8.RuneCountInString(ref), cand != "")
}

// WER is the word error rate over whitespace-separated tokens.
func WER(candidate, reference string) float64 {
	refWords := strings.Fields(reference)
	candWords := strings.Fields(candidate)

	ref, cand := encodeTokens(refWords, candWords)
	return rate(matchr.Levenshtein(ref, cand), len(refWords), len(candWords) > 0)
}

func rate(distance, refLen int, candidateNonEmpty bool) float64 {
	if refLen == 0 {
		if candidateNonEmpty {
			return 1.0
		}
		return 0.0
	}
	return min(float64(distance)/float64(refLen), 1.0)
}

// encodeTokens maps each distinct word to its own rune so that a rune-level
// edit distance over the encoded strings equals the word-level edit distance.
func encodeTokens(a, b []string) (string, string) {
	alphabet := make(map[string]rune)
	next := rune(0x100)

	encode := func(words []string) string {
		var sb strings.Builder
		for _, w := range words {
			r, ok := alphabet[w]
			if !ok {
				if next >= 0xD800 && next <= 0xDFFF {
					next = 0xE000
				}
				r = next
				alphabet[w] = r
				next++
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}

	return encode(a), encode(b)
}
