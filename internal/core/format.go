package core

// format.go renders stamp maps as display lines and plain-text reports.
//
// The same ordering rules drive every surface (plain text, HTML, XLSX, JSON):
// differences ascending, numbers ascending, and a number whose mirror is also
// present shares one line with it.

import (
	"fmt"
	"sort"
	"strings"
)

// ReportHeader is the first line of every plain-text report.
const ReportHeader = "=== РЕЗУЛЬТАТЫ АНАЛИЗА ==="

// StampGroup is one difference with its formatted lines.
type StampGroup struct {
	Difference int      `json:"difference"`
	Lines      []string `json:"lines"`
}

// Title returns the heading shown above a group.
func (g StampGroup) Title() string {
	return fmt.Sprintf("Штамп: %d", g.Difference)
}

// FormatStampGroup turns the numbers of one difference into display lines.
// Each number appears in exactly one line; mirror pairs share a line.
func FormatStampGroup(group map[int]int) []string {
	if len(group) == 0 {
		return nil
	}

	numbers := make([]int, 0, len(group))
	for n := range group {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	processed := make(map[int]bool, len(numbers))
	lines := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if processed[n] {
			continue
		}
		count := group[n]

		m, ok := Mirror(n)
		mirrorCount, present := group[m]
		if ok && m != n && present && !processed[m] {
			lines = append(lines, fmt.Sprintf("%d (%d шт) ⇄ %d (%d шт)", n, count, m, mirrorCount))
			processed[n] = true
			processed[m] = true
			continue
		}

		lines = append(lines, fmt.Sprintf("%d (%d шт)", n, count))
		processed[n] = true
	}
	return lines
}

// Groups returns the non-empty differences of stamps in ascending order
// with their formatted lines.
func Groups(stamps StampMap) []StampGroup {
	diffs := make([]int, 0, len(stamps))
	for d, group := range stamps {
		if len(group) > 0 {
			diffs = append(diffs, d)
		}
	}
	sort.Ints(diffs)

	groups := make([]StampGroup, 0, len(diffs))
	for _, d := range diffs {
		groups = append(groups, StampGroup{
			Difference: d,
			Lines:      FormatStampGroup(stamps[d]),
		})
	}
	return groups
}

// FormatReport renders the plain-text report for a stamp map.
func FormatReport(stamps StampMap, mode Mode) string {
	var b strings.Builder
	writeReport(&b, stamps, mode)
	return strings.TrimSpace(b.String())
}

// FormatDetailedReport renders the merged report and, when detail is set and
// more than one range was analyzed, a section per range in input order.
// Failed ranges show their error instead of groups.
func FormatDetailedReport(result *AnalysisResult, detail bool) string {
	var b strings.Builder
	writeReport(&b, result.Merged, result.Mode)

	if detail && len(result.Ranges) > 1 {
		for _, rr := range result.Ranges {
			b.WriteString(RangeTitle(rr.Query))
			b.WriteString("\n")
			if !rr.OK() {
				b.WriteString("Ошибка: ")
				b.WriteString(rr.Err.Error())
				b.WriteString("\n\n")
				continue
			}
			for _, g := range Groups(rr.Stamps) {
				b.WriteString(g.Title())
				b.WriteString("\n")
				for _, l := range g.Lines {
					b.WriteString(l)
					b.WriteString("\n")
				}
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}

// RangeTitle labels a range section in detailed reports.
func RangeTitle(q RangeQuery) string {
	from, to := q.From, q.To
	if n, ok := NormalizeRowNumber(from); ok {
		from = n
	}
	if n, ok := NormalizeRowNumber(to); ok {
		to = n
	}
	title := fmt.Sprintf("--- Диапазон %s–%s", from, to)
	if q.Mirror {
		title += " (" + ModeMirror.Label() + ")"
	}
	return title + " ---"
}

func writeReport(b *strings.Builder, stamps StampMap, mode Mode) {
	b.WriteString(ReportHeader)
	b.WriteString("\n\n")
	b.WriteString("Режим: ")
	b.WriteString(mode.Label())
	b.WriteString("\n\n")

	for _, g := range Groups(stamps) {
		b.WriteString(g.Title())
		b.WriteString("\n")
		for _, l := range g.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}
