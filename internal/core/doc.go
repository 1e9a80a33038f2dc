// Package core provides the business logic for stamp range analysis.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, the CLI, or tests without
// modification.
//
// # Data Model
//
// A [Table] is an ordered list of [Row] values. Cell 0 of a row is its
// identifier, a zero-padded six-digit row number such as "000042". Cells
// 1..6 are payload positions holding two-digit numbers (10-99) or a blank
// marker ("" or "nan").
//
// # Validation
//
// [Validate] checks a freshly loaded table and accumulates every problem:
// emptiness, column sufficiency, duplicate identifiers, and per-cell value
// checks. A table with any validation error blocks analysis.
//
// # Range Analysis
//
// [Analyze] counts two-digit numbers in an inclusive identifier range and
// groups them by digit difference ("stamp"):
//
//	stamps, err := core.Analyze(table, "1", "20", false)
//	// stamps[4][15] == displayed count of 15 under stamp |1-5| = 4
//
// Mirror mode scans positions 1..5 and also credits each number's
// digit-swapped counterpart. Displayed counts are twice the raw tally.
//
// [AnalyzeMany] runs several ranges concurrently and merges the successful
// ones with [Merge]. [FormatReport] and [Groups] render results with mirror
// pairs sharing a line.
//
// # Service
//
// [Service] owns the current [Dataset] snapshot. [Service.Reload] reads a
// fresh table from a [Loader], validates it and swaps it in atomically;
// queries read exactly one snapshot. Concurrent analyses are bounded by a
// [Limiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - RNG001-RNG007: Range errors (format, order, completeness, limits)
//   - ROW001-ROW002: Row lookup errors
//   - DS001-DS002: Dataset errors (unavailable, invalid)
//   - ANL001-ANL003: Analysis errors (busy, cancelled, timeout)
//   - SRC001-SRC005: Source loading errors
package core
