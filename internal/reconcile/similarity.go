package reconcile

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// matchThreshold is the similarity cutoff above which two descriptions are
// considered the same line item. Strictly greater-than: a pair scoring
// exactly 80 is not eligible.
const matchThreshold = 80.0

// similarity scores two descriptions on a 0-100 scale using a normalized
// Levenshtein ratio, case-insensitively. An empty description scores zero
// against everything, including another empty description, so items without
// descriptions never pair with each other.
func similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions) * 100
}
