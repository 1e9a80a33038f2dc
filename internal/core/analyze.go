package core

// analyze.go implements range analysis: completeness checking and stamp counting.

import "math"

// Analyze computes the stamp frequencies for the inclusive range [from, to].
//
// Both bounds are user input and are normalized first. The range must be
// complete: every identifier between the bounds has to exist in the table,
// otherwise nothing is counted and an IncompleteRange error lists the gaps.
//
// In mirror mode only payload positions 1..5 are scanned and every counted
// number also credits its digit-swapped counterpart.
func Analyze(table Table, from, to string, mirror bool) (StampMap, error) {
	start, okStart := NormalizeRowNumber(from)
	end, okEnd := NormalizeRowNumber(to)
	if !okStart || !okEnd {
		return nil, &AnalysisError{Kind: KindInvalidRangeFormat}
	}

	if start > end {
		return nil, &AnalysisError{Kind: KindInvertedRange, From: start, To: end}
	}

	if missing := MissingRows(table, start, end); len(missing) > 0 {
		return nil, &AnalysisError{Kind: KindIncompleteRange, From: start, To: end, Missing: missing}
	}

	rows := rowsInRange(table, start, end)
	if len(rows) == 0 {
		return nil, &AnalysisError{Kind: KindEmptyRange, From: start, To: end}
	}

	return toStampMap(countNumbers(rows, mirror)), nil
}

// AnalyzeQuery is Analyze for a RangeQuery.
func AnalyzeQuery(table Table, q RangeQuery) (StampMap, error) {
	return Analyze(table, q.From, q.To, q.Mirror)
}

// MissingRows returns every padded identifier in [start, end] that has no
// row in the table. start and end must already be normalized.
func MissingRows(table Table, start, end string) []string {
	existing := make(map[string]struct{}, len(table))
	for _, row := range table {
		existing[row.ID()] = struct{}{}
	}

	lo, _ := ParseLeadingInteger(start)
	hi, _ := ParseLeadingInteger(end)

	if lo > hi {
		return nil
	}

	var missing []string
	for i := lo; ; i++ {
		id := FormatRowNumber(i)
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
		// i++ past MaxInt64 would wrap
		if i == hi {
			break
		}
	}
	return missing
}

// RangeSpan returns the number of identifiers covered by a query, or false
// when the bounds do not normalize. A span that does not fit in int64
// saturates at math.MaxInt64.
func RangeSpan(q RangeQuery) (int64, bool) {
	lo, ok := ParseLeadingInteger(q.From)
	if !ok || lo < 0 {
		return 0, false
	}
	hi, ok := ParseLeadingInteger(q.To)
	if !ok || hi < 0 {
		return 0, false
	}
	if hi < lo {
		return 0, true
	}
	if span := hi - lo; span < math.MaxInt64 {
		return span + 1, true
	}
	return math.MaxInt64, true
}

// rowsInRange filters rows whose raw identifier lies within [start, end].
// String comparison is valid because identifiers share a fixed width.
func rowsInRange(table Table, start, end string) []Row {
	var out []Row
	for _, row := range table {
		id := row.ID()
		if id >= start && id <= end {
			out = append(out, row)
		}
	}
	return out
}

// countNumbers tallies raw occurrences of valid two-digit values.
// Mirror mode adds one independent increment for the mirror, even when the
// number is its own mirror.
func countNumbers(rows []Row, mirror bool) map[int]int {
	positions := PayloadPositions
	if mirror {
		positions = MirrorPositions
	}

	counts := make(map[int]int)
	for _, row := range rows {
		for pos := 1; pos <= positions; pos++ {
			cell, ok := row.Cell(pos)
			if !ok || isAbsentMarker(cell) {
				continue
			}

			v, ok := ParseLeadingInteger(cell)
			if !ok || v < MinTwoDigit || v > MaxTwoDigit {
				continue
			}

			n := int(v)
			counts[n]++

			if mirror {
				if m, ok := Mirror(n); ok {
					counts[m]++
				}
			}
		}
	}
	return counts
}

// toStampMap groups raw counts by digit difference and doubles them.
// Numbers without a two-digit difference (mirrors of multiples of ten) are dropped.
func toStampMap(counts map[int]int) StampMap {
	stamps := make(StampMap)
	for n, count := range counts {
		diff, ok := DigitDifference(n)
		if !ok {
			continue
		}
		if stamps[diff] == nil {
			stamps[diff] = make(map[int]int)
		}
		stamps[diff][n] = count * 2
	}
	return stamps
}
