// Package textsim provides text normalization and similarity for UI strings.
package textsim

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode NFC form with runs of whitespace collapsed
// to a single space and leading and trailing whitespace removed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Equal reports whether a and b are equal after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Dice returns the Sørensen–Dice coefficient of the rune bigram multisets
// of a and b, in [0, 1]. Equal strings score 1. Strings shorter than two
// runes have no bigrams and only score 1 when equal. Inputs are compared
// as given; callers normalize first.
func Dice(a, b string) float64 {
	if a == b {
		return 1
	}
	ba, bb := bigrams(a), bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	counts := make(map[[2]rune]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}
	shared := 0
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ba)+len(bb))
}

func bigrams(s string) [][2]rune {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make([][2]rune, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		out = append(out, [2]rune{runes[i], runes[i+1]})
	}
	return out
}
