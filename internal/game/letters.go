package game

import "unicode"

// CountLetters returns the multiset of letters in s, lowercased.
func CountLetters(s string) map[rune]int {
	return CountRunes([]rune(s))
}

// CountRunes is CountLetters over an already split sequence. Zero runes
// (empty row positions) are not counted.
func CountRunes(seq []rune) map[rune]int {
	counts := make(map[rune]int, len(seq))
	for _, r := range seq {
		if r == 0 {
			continue
		}
		counts[unicode.ToLower(r)]++
	}
	return counts
}
