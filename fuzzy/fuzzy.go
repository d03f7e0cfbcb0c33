// Package fuzzy implements the string similarity scores used to match mirror domains.
package fuzzy

import (
	"math"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
)

// Ratio returns the similarity of two strings on a 0..100 scale,
// based on their edit distance relative to the longer string.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 100
	}

	distance := levenshtein.Distance(a, b)
	return score(distance, longest)
}

// PartialRatio returns the best Ratio between the shorter string and every
// substring of the longer one with the same length. An empty string scores 0.
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}

	if len(short) == 0 {
		return 0
	}

	needle := string(short)
	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		window := string(long[i : i+len(short)])

		s := score(levenshtein.Distance(needle, window), len(short))
		if s > best {
			best = s
		}

		if best == 100 {
			break
		}
	}

	return best
}

func score(distance, length int) int {
	if distance >= length {
		return 0
	}

	return int(math.Round(100 * (1 - float64(distance)/float64(length))))
}

// Levenshtein scores similarity with PartialRatio.
type Levenshtein struct{}

func (Levenshtein) PartialRatio(a, b string) int {
	return PartialRatio(a, b)
}
