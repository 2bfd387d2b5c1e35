package ocr

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Similarity measures how well two texts agree, as the token overlap between
// them in [0, 1]: the matched token count over the larger token count. Both
// texts are NFKC-normalized, case-folded, and split on non-alphanumeric runes
// first, so ligatures, full-width forms, and punctuation differences between
// OCR output and captured DOM text do not count against the match.
func Similarity(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ta))
	for _, tok := range ta {
		counts[tok]++
	}

	matched := 0
	for _, tok := range tb {
		if counts[tok] > 0 {
			counts[tok]--
			matched++
		}
	}

	larger := len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}
	return float64(matched) / float64(larger)
}

// tokenize folds text for comparison and splits it into tokens.
func tokenize(s string) []string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
