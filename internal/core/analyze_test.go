package core

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		row("000001", "15", "51", "20", "30", "40", "50"),
		row("000002", "15", "15", "20", "30", "40", "50"),
	}
}

func TestAnalyze_Normal(t *testing.T) {
	stamps, err := Analyze(sampleTable(), "1", "2", false)
	require.NoError(t, err)

	want := StampMap{
		2: {20: 4},
		3: {30: 4},
		4: {15: 6, 51: 2, 40: 4},
		5: {50: 4},
	}
	assert.Equal(t, want, stamps)
}

func TestAnalyze_Mirror(t *testing.T) {
	stamps, err := Analyze(sampleTable(), "000001", "000002", true)
	require.NoError(t, err)

	// Position 6 (50) is not scanned. Mirrors of 20/30/40 are single
	// digits and are dropped.
	want := StampMap{
		2: {20: 4},
		3: {30: 4},
		4: {15: 8, 51: 8, 40: 4},
	}
	assert.Equal(t, want, stamps)
}

func TestAnalyze_SelfMirrorCountsTwice(t *testing.T) {
	table := Table{row("000001", "11", "", "", "", "", "")}

	normal, err := Analyze(table, "1", "1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, normal[0][11])

	mirror, err := Analyze(table, "1", "1", true)
	require.NoError(t, err)
	assert.Equal(t, 4, mirror[0][11])
}

func TestAnalyze_SkipsInvalidCells(t *testing.T) {
	table := Table{row("000001", "nan", "abc", "5", "100", "12.9", " 33 ")}

	stamps, err := Analyze(table, "1", "1", false)
	require.NoError(t, err)
	assert.Equal(t, StampMap{1: {12: 2}, 0: {33: 2}}, stamps)
}

func TestAnalyze_IgnoresRowsOutsideRange(t *testing.T) {
	table := Table{
		row("000001", "15", "", "", "", "", ""),
		row("000002", "27", "", "", "", "", ""),
		row("000003", "38", "", "", "", "", ""),
	}

	stamps, err := Analyze(table, "2", "2", false)
	require.NoError(t, err)
	assert.Equal(t, StampMap{5: {27: 2}}, stamps)
}

func TestAnalyze_Errors(t *testing.T) {
	table := Table{
		row("000001", "15", "51", "20", "30", "40", "50"),
		row("000003", "15", "51", "20", "30", "40", "50"),
	}

	tests := []struct {
		name     string
		from, to string
		kind     ErrorKind
	}{
		{"empty start", "", "3", KindInvalidRangeFormat},
		{"non numeric end", "1", "abc", KindInvalidRangeFormat},
		{"negative", "-1", "3", KindInvalidRangeFormat},
		{"inverted", "3", "1", KindInvertedRange},
		{"incomplete", "1", "3", KindIncompleteRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamps, err := Analyze(table, tt.from, tt.to, false)
			assert.Nil(t, stamps)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestAnalyze_IncompleteListsMissing(t *testing.T) {
	table := Table{
		row("000001", "15", "51", "20", "30", "40", "50"),
		row("000003", "15", "51", "20", "30", "40", "50"),
	}

	_, err := Analyze(table, "1", "3", false)

	var ae *AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, []string{"000002"}, ae.Missing)
	assert.Equal(t, "В диапазоне отсутствуют строки: 000002", err.Error())
}

func TestAnalyze_UnpaddedIdentifiersAreMissing(t *testing.T) {
	// Completeness compares raw cells against padded identifiers.
	table := Table{row("1", "15", "51", "20", "30", "40", "50")}

	_, err := Analyze(table, "1", "1", false)
	assert.Equal(t, KindIncompleteRange, KindOf(err))
}

func TestAnalyze_EmptyRange(t *testing.T) {
	// Bounds wider than six digits compare as strings: "1000000" sorts
	// before "999999", so the range passes the order check while covering
	// no identifiers numerically.
	table := Table{row("000001", "15", "", "", "", "", "")}

	_, err := Analyze(table, "1000000", "999999", false)
	assert.Equal(t, KindEmptyRange, KindOf(err))
}

func TestAnalyze_DoesNotMutateTable(t *testing.T) {
	table := sampleTable()
	before := make(Table, len(table))
	for i, r := range table {
		before[i] = append(Row(nil), r...)
	}

	_, err := Analyze(table, "1", "2", true)
	require.NoError(t, err)
	assert.Equal(t, before, table)
}

func TestRangeSpan(t *testing.T) {
	span, ok := RangeSpan(RangeQuery{From: "1", To: "20"})
	assert.True(t, ok)
	assert.EqualValues(t, 20, span)

	span, ok = RangeSpan(RangeQuery{From: "20", To: "1"})
	assert.True(t, ok)
	assert.Zero(t, span)

	_, ok = RangeSpan(RangeQuery{From: "x", To: "1"})
	assert.False(t, ok)
}

func TestRangeSpan_SaturatesAtMaxInt64(t *testing.T) {
	maxID := strconv.FormatInt(math.MaxInt64, 10)

	span, ok := RangeSpan(RangeQuery{From: "0", To: maxID})
	assert.True(t, ok)
	assert.EqualValues(t, int64(math.MaxInt64), span)

	span, ok = RangeSpan(RangeQuery{From: "1", To: maxID})
	assert.True(t, ok)
	assert.EqualValues(t, int64(math.MaxInt64), span)

	span, ok = RangeSpan(RangeQuery{From: maxID, To: maxID})
	assert.True(t, ok)
	assert.EqualValues(t, 1, span)
}

// analyzeWithin runs Analyze and fails the test if it does not return in time.
func analyzeWithin(t *testing.T, d time.Duration, table Table, from, to string) (StampMap, error) {
	t.Helper()
	type outcome struct {
		stamps StampMap
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		stamps, err := Analyze(table, from, to, false)
		done <- outcome{stamps, err}
	}()
	select {
	case o := <-done:
		return o.stamps, o.err
	case <-time.After(d):
		t.Fatalf("Analyze(%s, %s) did not return within %s", from, to, d)
		return nil, nil
	}
}

func TestAnalyze_RangeEndingAtMaxInt64(t *testing.T) {
	maxID := strconv.FormatInt(math.MaxInt64, 10)
	prevID := strconv.FormatInt(math.MaxInt64-1, 10)

	table := Table{row(maxID, "15", "20", "30", "40", "50", "60")}
	stamps, err := analyzeWithin(t, 2*time.Second, table, maxID, maxID)
	require.NoError(t, err)
	assert.Equal(t, 2, stamps[4][15])

	_, err = analyzeWithin(t, 2*time.Second, table, prevID, maxID)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindIncompleteRange, ae.Kind)
	assert.Equal(t, []string{prevID}, ae.Missing)
}

func TestMissingRows_InvertedBounds(t *testing.T) {
	assert.Nil(t, MissingRows(sampleTable(), "000002", "000001"))
}
