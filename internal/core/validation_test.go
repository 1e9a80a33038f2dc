package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cells ...string) Row { return Row(cells) }

func TestValidate_Valid(t *testing.T) {
	table := Table{
		row("000001", "15", "51", "20", "30", "40", "50"),
		row("000002", "15", "", "nan", "NaN", " 40 ", "50"),
	}
	assert.Empty(t, Validate(table))
}

func TestValidate_Empty(t *testing.T) {
	errs := Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, KindEmptyDataset, errs[0].Kind)
}

func TestValidate_MissingLastPosition(t *testing.T) {
	table := Table{
		row("000001", "15", "51", "20", "30", "40", "50"),
		row("000002", "15", "51", "20", "30", "40", "50"),
		row("000003", "15", "51", "20", "30", "40", "50"),
		row("000004", "15", "51", "20", "30", "40", "50"),
		row("000005", "15", "51", "20", "30", "40"),
	}

	errs := Validate(table)
	require.Len(t, errs, 1)
	assert.Equal(t, KindMissingValue, errs[0].Kind)
	assert.Equal(t, "000005", errs[0].Row)
	assert.Equal(t, 6, errs[0].Position)
	assert.Equal(t, "Строка 000005: отсутствует значение в позиции 6", errs[0].Message)
}

func TestValidate_ColumnSufficiency(t *testing.T) {
	full := row("000001", "11", "11", "11", "11", "11", "11")
	short := row("000002", "11")

	// 4 of 5 rows qualify: exactly 80%, passes the threshold.
	table := Table{full, full, full, full, short}
	assert.Zero(t, CountByKind(Validate(table))[KindInsufficientColumns])

	// 3 of 5 rows qualify.
	table = Table{full, full, full, short, short}
	assert.Equal(t, 1, CountByKind(Validate(table))[KindInsufficientColumns])

	// ceil(0.8*3) = 3, so 2 of 3 is not enough.
	table = Table{full, full, short}
	assert.Equal(t, 1, CountByKind(Validate(table))[KindInsufficientColumns])
}

func TestValidate_Duplicates(t *testing.T) {
	table := Table{
		row("000002", "11", "11", "11", "11", "11", "11"),
		row("000001", "11", "11", "11", "11", "11", "11"),
		row("000002", "11", "11", "11", "11", "11", "11"),
		row("000001", "11", "11", "11", "11", "11", "11"),
		row("1", "11", "11", "11", "11", "11", "11"),
	}

	errs := Validate(table)
	require.Len(t, errs, 1)
	assert.Equal(t, KindDuplicateIdentifier, errs[0].Kind)
	// Raw comparison: "1" is not a duplicate of "000001".
	assert.Equal(t, "000002, 000001", errs[0].Value)
}

func TestValidate_CellKinds(t *testing.T) {
	table := Table{
		row("000001", "abc", "5", "100", "12x", "15", "99"),
	}

	errs := Validate(table)
	require.Len(t, errs, 3)

	assert.Equal(t, KindNonNumericValue, errs[0].Kind)
	assert.Equal(t, 1, errs[0].Position)
	assert.Equal(t, "Строка 000001, позиция 1: значение 'abc' не является числом", errs[0].Message)

	assert.Equal(t, KindNotTwoDigit, errs[1].Kind)
	assert.Equal(t, 2, errs[1].Position)

	assert.Equal(t, KindNotTwoDigit, errs[2].Kind)
	assert.Equal(t, 3, errs[2].Position)
}

func TestValidate_NegativeIsNotTwoDigit(t *testing.T) {
	errs := Validate(Table{row("000001", "-15", "11", "11", "11", "11", "11")})
	require.Len(t, errs, 1)
	assert.Equal(t, KindNotTwoDigit, errs[0].Kind)
	assert.Equal(t, "-15", errs[0].Value)
}

func TestValidate_AccumulatesAll(t *testing.T) {
	table := Table{
		row("000001", "11", "11", "11", "11", "11", "11"),
		row("000001", "x"),
		row(),
	}

	counts := CountByKind(Validate(table))
	assert.Equal(t, 1, counts[KindInsufficientColumns])
	assert.Equal(t, 1, counts[KindDuplicateIdentifier])
	assert.Equal(t, 1, counts[KindNonNumericValue])
	assert.Equal(t, 11, counts[KindMissingValue])
}

func TestValidate_EmptyRowLabel(t *testing.T) {
	errs := Validate(Table{row("000001", "11", "11", "11", "11", "11", "11"), row()})
	var labels []string
	for _, e := range errs {
		if e.Kind == KindMissingValue {
			labels = append(labels, e.Row)
		}
	}
	require.NotEmpty(t, labels)
	assert.Equal(t, "(строка 2)", labels[0])
}
