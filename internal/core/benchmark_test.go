package core

import (
	"context"
	"fmt"
	"testing"
)

// ============================================================================
// Row Number Benchmarks
// ============================================================================

// BenchmarkParseLeadingInteger covers the shapes seen in identifier cells.
func BenchmarkParseLeadingInteger(b *testing.B) {
	testCases := []string{
		"000042",
		"42",
		"  42  ",
		"42abc",
		"abc",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseLeadingInteger(tc)
		}
	}
}

func BenchmarkNormalizeRowNumber(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NormalizeRowNumber("1234")
	}
}

// ============================================================================
// Validation Benchmarks
// ============================================================================

func BenchmarkValidate(b *testing.B) {
	for _, rows := range []int{100, 10_000} {
		table := generateTable(rows)
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Validate(table)
			}
		})
	}
}

// ============================================================================
// Analysis Benchmarks
// ============================================================================

// BenchmarkAnalyze scans the whole table for one range; the range filter is
// the hot path on large tables.
func BenchmarkAnalyze(b *testing.B) {
	table := generateTable(10_000)

	b.Run("normal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Analyze(table, "1", "10000", false)
		}
	})

	b.Run("mirror", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Analyze(table, "1", "10000", true)
		}
	})

	b.Run("narrow", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Analyze(table, "5000", "5020", false)
		}
	})
}

// BenchmarkAnalyzeMany compares sequential and parallel multi-range analysis.
func BenchmarkAnalyzeMany(b *testing.B) {
	table := generateTable(10_000)
	queries := make([]RangeQuery, 0, 20)
	for start := 1; start <= 10_000; start += 500 {
		queries = append(queries, RangeQuery{
			From: fmt.Sprint(start),
			To:   fmt.Sprint(start + 499),
		})
	}

	for _, parallelism := range []int{1, 4} {
		b.Run(fmt.Sprintf("parallelism=%d", parallelism), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				AnalyzeMany(context.Background(), table, queries, parallelism)
			}
		})
	}
}

// ============================================================================
// Formatting Benchmarks
// ============================================================================

func BenchmarkFormatReport(b *testing.B) {
	stamps, err := Analyze(generateTable(10_000), "1", "10000", true)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FormatReport(stamps, ModeMirror)
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

// generateTable builds a valid table with rows identifiers 000001..n and
// deterministic two-digit payloads.
func generateTable(rows int) Table {
	table := make(Table, rows)
	for i := range rows {
		row := make(Row, PayloadPositions+1)
		row[0] = fmt.Sprintf("%06d", i+1)
		for pos := 1; pos <= PayloadPositions; pos++ {
			row[pos] = fmt.Sprintf("%02d", (i*7+pos*13)%100)
		}
		table[i] = row
	}
	return table
}
