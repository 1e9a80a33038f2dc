package core

// rownum.go handles row identifiers and the two-digit number helpers.
//
// Every integer read from the dataset or from user input goes through
// ParseLeadingInteger. The parser is deliberately lenient: it accepts a
// leading integer and ignores whatever follows it, so "12abc" and "12.7"
// both read as 12. Callers that need a range check apply it themselves.

import (
	"fmt"
	"math"
	"strings"
)

// RowNumberWidth is the zero-padded width of a canonical row identifier.
const RowNumberWidth = 6

// Bounds of a valid payload value.
const (
	MinTwoDigit = 10
	MaxTwoDigit = 99
)

// ParseLeadingInteger reads the leading base-10 integer of s.
//
// Accepted: optional surrounding whitespace, an optional '+' or '-' sign,
// then one or more ASCII digits. Anything after the digit run is ignored.
// Rejected: no digit after the optional sign, or a value that does not fit
// in int64.
func ParseLeadingInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}

	var n uint64
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		d := uint64(s[digits] - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0, false
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return 0, false
	}

	if neg {
		return -int64(n), true
	}
	return int64(n), true
}

// FormatRowNumber renders n as a zero-padded row identifier.
// Values wider than RowNumberWidth keep their natural width.
func FormatRowNumber(n int64) string {
	return fmt.Sprintf("%0*d", RowNumberWidth, n)
}

// NormalizeRowNumber converts user input into a canonical row identifier.
// Returns false for empty input, input without a leading integer, or a
// negative value.
func NormalizeRowNumber(input string) (string, bool) {
	n, ok := ParseLeadingInteger(input)
	if !ok || n < 0 {
		return "", false
	}
	return FormatRowNumber(n), true
}

// IsTwoDigit reports whether n lies in [MinTwoDigit, MaxTwoDigit].
func IsTwoDigit(n int) bool {
	return n >= MinTwoDigit && n <= MaxTwoDigit
}

// DigitDifference returns |tens - units| for a two-digit number.
func DigitDifference(n int) (int, bool) {
	if !IsTwoDigit(n) {
		return 0, false
	}
	d := n/10 - n%10
	if d < 0 {
		d = -d
	}
	return d, true
}

// Mirror returns the digit-swapped counterpart of a two-digit number.
// Multiples of ten mirror to a single digit (10 -> 1).
func Mirror(n int) (int, bool) {
	if !IsTwoDigit(n) {
		return 0, false
	}
	return (n%10)*10 + n/10, true
}
