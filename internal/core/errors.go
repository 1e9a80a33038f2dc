package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies validation, analysis and lookup failures.
type ErrorKind string

// Validation-phase kinds. All of them are accumulated and reported together.
const (
	KindEmptyDataset        ErrorKind = "empty_dataset"
	KindInsufficientColumns ErrorKind = "insufficient_columns"
	KindDuplicateIdentifier ErrorKind = "duplicate_identifier"
	KindMissingValue        ErrorKind = "missing_value"
	KindNonNumericValue     ErrorKind = "non_numeric_value"
	KindNotTwoDigit         ErrorKind = "not_two_digit"
)

// Analysis-phase and lookup kinds. One per call.
const (
	KindInvalidRangeFormat ErrorKind = "invalid_range_format"
	KindInvertedRange      ErrorKind = "inverted_range"
	KindIncompleteRange    ErrorKind = "incomplete_range"
	KindEmptyRange         ErrorKind = "empty_range"
	KindInvalidRowNumber   ErrorKind = "invalid_row_number"
	KindRowNotFound        ErrorKind = "row_not_found"
)

// Service-level errors.
var (
	// ErrDatasetUnavailable is returned while no table could be loaded.
	ErrDatasetUnavailable = errors.New("dataset unavailable: source failed to load")

	// ErrDatasetInvalid is returned while the loaded table fails validation.
	ErrDatasetInvalid = errors.New("dataset invalid: fix validation errors and reload")

	// ErrTooManyRanges is returned when a request exceeds the configured range count.
	ErrTooManyRanges = errors.New("too many ranges in one request")

	// ErrRangeTooLarge is returned when a range spans more rows than allowed.
	ErrRangeTooLarge = errors.New("range too large")

	// ErrNoRanges is returned when an analysis is requested without ranges.
	ErrNoRanges = errors.New("no ranges requested")
)

// AnalysisError describes why one range or one lookup could not be served.
type AnalysisError struct {
	Kind    ErrorKind
	From    string   // normalized start, when known
	To      string   // normalized end, when known
	Missing []string // identifiers absent from the table (KindIncompleteRange)
	Input   string   // raw user input (KindInvalidRowNumber, KindRowNotFound)
}

func (e *AnalysisError) Error() string {
	switch e.Kind {
	case KindInvalidRangeFormat:
		return "Некорректный формат диапазона"
	case KindInvertedRange:
		return "Начало диапазона не может быть больше конца"
	case KindIncompleteRange:
		return "В диапазоне отсутствуют строки: " + strings.Join(e.Missing, ", ")
	case KindEmptyRange:
		return "Нет данных в указанном диапазоне"
	case KindInvalidRowNumber:
		return "Некорректный номер строки"
	case KindRowNotFound:
		return fmt.Sprintf("Строка %s не найдена", e.Input)
	default:
		return string(e.Kind)
	}
}

// Is lets errors.Is match on kind: errors.Is(err, &AnalysisError{Kind: KindEmptyRange}).
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an AnalysisError.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// ErrRowNotFound matches any row-not-found lookup error via errors.Is.
var ErrRowNotFound = &AnalysisError{Kind: KindRowNotFound}
