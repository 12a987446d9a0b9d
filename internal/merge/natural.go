// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge assembles per-category PDFs into one merged document per
// (unit, category) pair. Member ordering is derived from filenames alone,
// using a natural sort so that 10.Lecture.pdf follows 2.Lecture.pdf instead
// of preceding it.
package merge

import "strings"

// naturalToken is one run of a filename: either a digit run (compared
// numerically) or a text run (compared case-insensitively).
type naturalToken struct {
	text  string
	isNum bool
}

// naturalTokens splits s into alternating text/digit runs.
func naturalTokens(s string) []naturalToken {
	var tokens []naturalToken
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[start]) {
			if i > start {
				tokens = append(tokens, naturalToken{
					text:  s[start:i],
					isNum: isDigit(s[start]),
				})
			}
			start = i
		}
	}
	return tokens
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// compareDigits compares two digit runs numerically without parsing:
// strip leading zeros, then longer is larger, then lexicographic.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// NaturalLess reports whether a sorts before b in natural order. Digit runs
// sorts before text runs when token kinds differ, matching byte order of
// '0'-'9' against letters.
func NaturalLess(a, b string) bool {
	ta, tb := naturalTokens(a), naturalTokens(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		switch {
		case x.isNum && y.isNum:
			if c := compareDigits(x.text, y.text); c != 0 {
				return c < 0
			}
		case !x.isNum && !y.isNum:
			lx, ly := strings.ToLower(x.text), strings.ToLower(y.text)
			if lx != ly {
				return lx < ly
			}
		default:
			return x.isNum
		}
	}
	return len(ta) < len(tb)
}
