// Package natsort provides natural-order string comparison: embedded digit
// runs compare by numeric value, so "Lecture 2" sorts before "Lecture 10".
package natsort

import (
	"sort"
	"strings"
)

// Fold normalizes a string for case-insensitive comparison.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Less reports whether a sorts before b in natural order.
// Digit runs compare by numeric value (leading zeros ignored for the value;
// on equal values the shorter run wins). Everything else compares
// case-insensitively byte by byte.
func Less(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			runStartA := i
			for i < len(a) && a[i] == '0' {
				i++
			}
			valStartA := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			runLenA := i - runStartA
			valA := a[valStartA:i]

			runStartB := j
			for j < len(b) && b[j] == '0' {
				j++
			}
			valStartB := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			runLenB := j - runStartB
			valB := b[valStartB:j]

			// More significant digits means a larger value.
			if len(valA) != len(valB) {
				return len(valA) < len(valB)
			}
			if valA != valB {
				return valA < valB
			}
			// Equal values: fewer leading zeros first.
			if runLenA != runLenB {
				return runLenA < runLenB
			}
			continue
		}

		ca, cb := lower(a[i]), lower(b[j])
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

// Sort sorts ss in place in natural order.
func Sort(ss []string) {
	sort.SliceStable(ss, func(i, j int) bool { return Less(ss[i], ss[j]) })
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
