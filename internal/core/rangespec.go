package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadRangeSpec is returned when a "from-to" range spec cannot be split.
var ErrBadRangeSpec = errors.New("bad range spec")

// rangeSeparators are accepted between the bounds of a range spec.
var rangeSeparators = []string{"–", "—", "..", ":", "-"}

// ParseRangeSpec splits a "from-to" spec into a query. A single bound
// ("15") yields a one-row range. Bounds are kept as typed; their format is
// checked later by Analyze.
func ParseRangeSpec(spec string, mirror bool) (RangeQuery, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return RangeQuery{}, fmt.Errorf("%w: empty", ErrBadRangeSpec)
	}

	for _, sep := range rangeSeparators {
		from, to, found := strings.Cut(spec, sep)
		if !found {
			continue
		}
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if from == "" || to == "" {
			return RangeQuery{}, fmt.Errorf("%w: %q", ErrBadRangeSpec, spec)
		}
		return RangeQuery{From: from, To: to, Mirror: mirror}, nil
	}

	return RangeQuery{From: spec, To: spec, Mirror: mirror}, nil
}

// ParseRangeList parses specs separated by commas, semicolons or newlines.
func ParseRangeList(list string, mirror bool) ([]RangeQuery, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})

	var queries []RangeQuery
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		q, err := ParseRangeSpec(f, mirror)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	if len(queries) == 0 {
		return nil, ErrNoRanges
	}
	return queries, nil
}
