package model

import (
	"strings"
)

// Compares two strings in "natural" order. Both strings are split into
// runs of digits and runs of non-digits. Digit runs are compared by
// numeric value, everything else byte-wise. So "2" < "10" < "X1".
//
// Strings that are equal chunk by chunk (e.g. "01" and "1") fall back
// to plain string comparison, keeping the ordering total.
func CompareAlphanumeric(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		chunkA := nextChunk(a, i)
		chunkB := nextChunk(b, j)
		i += len(chunkA)
		j += len(chunkB)

		var c int
		if isDigit(chunkA[0]) && isDigit(chunkB[0]) {
			c = compareNumeric(chunkA, chunkB)
		} else {
			c = strings.Compare(chunkA, chunkB)
		}
		if c != 0 {
			return c
		}
	}

	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	}

	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func nextChunk(s string, start int) string {
	digits := isDigit(s[start])
	end := start + 1
	for end < len(s) && isDigit(s[end]) == digits {
		end++
	}
	return s[start:end]
}

// Digit runs of arbitrary length, so no strconv.
func compareNumeric(a, b string) int {
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
