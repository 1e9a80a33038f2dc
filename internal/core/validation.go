package core

// validation.go checks the structural integrity of a loaded table.
//
// Validation runs every rule and accumulates all messages so the user can
// fix the source file in one pass:
//  1. Emptiness: an empty table yields a single error and stops
//  2. Column sufficiency: at least 80% of rows must carry 7 cells
//  3. Duplicate identifiers: raw cell[0] values seen more than once
//  4. Per-cell checks on payload positions 1..6
//
// A table with any error blocks analysis but is never modified.

import (
	"fmt"
	"strings"
)

// minQualifyingShare is the share of rows (in tenths) that must carry a full row.
const minQualifyingShare = 8

// ValidationError represents a single structural problem in the table.
type ValidationError struct {
	Kind     ErrorKind `json:"kind"`
	Row      string    `json:"row,omitempty"`      // raw identifier or "(строка N)"
	Position int       `json:"position,omitempty"` // payload position 1..6, 0 when not cell-specific
	Value    string    `json:"value,omitempty"`    // offending cell value
	Message  string    `json:"message"`            // human-readable description
}

func (e ValidationError) Error() string {
	return e.Message
}

// Validate checks table structure and returns every problem found.
// An empty result means the table passes.
func Validate(table Table) []ValidationError {
	if len(table) == 0 {
		return []ValidationError{{
			Kind:    KindEmptyDataset,
			Message: "Файл пуст или не может быть прочитан.",
		}}
	}

	var errs []ValidationError

	if e, ok := checkColumnSufficiency(table); !ok {
		errs = append(errs, e)
	}
	if e, ok := checkDuplicateIDs(table); !ok {
		errs = append(errs, e)
	}
	for i, row := range table {
		errs = append(errs, validateRow(i, row)...)
	}

	return errs
}

// checkColumnSufficiency requires ceil(80%) of rows to carry identifier + 6 values.
func checkColumnSufficiency(table Table) (ValidationError, bool) {
	qualifying := 0
	for _, row := range table {
		if len(row) >= PayloadPositions+1 {
			qualifying++
		}
	}

	required := (len(table)*minQualifyingShare + 9) / 10
	if qualifying >= required {
		return ValidationError{}, true
	}

	return ValidationError{
		Kind:    KindInsufficientColumns,
		Message: "Недостаточно колонок в файле. Ожидается минимум 7 колонок (номер строки + 6 значений) в большинстве строк.",
	}, false
}

// checkDuplicateIDs reports raw identifiers that occur more than once.
// Comparison is on the raw cell, not the normalized identifier.
func checkDuplicateIDs(table Table) (ValidationError, bool) {
	counts := make(map[string]int, len(table))
	var order []string
	for _, row := range table {
		id := row.ID()
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	var dups []string
	for _, id := range order {
		if id != "" && counts[id] > 1 {
			dups = append(dups, id)
		}
	}
	if len(dups) == 0 {
		return ValidationError{}, true
	}

	return ValidationError{
		Kind:    KindDuplicateIdentifier,
		Value:   strings.Join(dups, ", "),
		Message: "Найдены дублирующиеся номера строк: " + strings.Join(dups, ", "),
	}, false
}

// validateRow checks payload positions 1..6 of a single row.
func validateRow(index int, row Row) []ValidationError {
	label := rowLabel(index, row)

	var errs []ValidationError
	for pos := 1; pos <= PayloadPositions; pos++ {
		value, ok := row.Cell(pos)
		if !ok {
			errs = append(errs, ValidationError{
				Kind:     KindMissingValue,
				Row:      label,
				Position: pos,
				Message:  fmt.Sprintf("Строка %s: отсутствует значение в позиции %d", label, pos),
			})
			continue
		}

		if isAbsentMarker(value) {
			continue
		}

		n, ok := ParseLeadingInteger(value)
		if !ok {
			errs = append(errs, ValidationError{
				Kind:     KindNonNumericValue,
				Row:      label,
				Position: pos,
				Value:    value,
				Message:  fmt.Sprintf("Строка %s, позиция %d: значение '%s' не является числом", label, pos, value),
			})
			continue
		}

		if n < MinTwoDigit || n > MaxTwoDigit {
			errs = append(errs, ValidationError{
				Kind:     KindNotTwoDigit,
				Row:      label,
				Position: pos,
				Value:    value,
				Message:  fmt.Sprintf("Строка %s, позиция %d: значение '%s' не является двузначным числом", label, pos, value),
			})
		}
	}
	return errs
}

// rowLabel identifies a row in messages: its raw identifier, or its 1-based
// position when the row has no cells at all.
func rowLabel(index int, row Row) string {
	if len(row) == 0 {
		return fmt.Sprintf("(строка %d)", index+1)
	}
	return row[0]
}

// CountByKind groups validation errors by kind, for summaries and metrics.
func CountByKind(errs []ValidationError) map[ErrorKind]int {
	out := make(map[ErrorKind]int)
	for _, e := range errs {
		out[e.Kind]++
	}
	return out
}
