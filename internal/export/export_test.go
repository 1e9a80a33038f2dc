package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *core.AnalysisResult {
	first := core.StampMap{4: {15: 6, 51: 2, 40: 4}, 2: {20: 4}}
	return &core.AnalysisResult{
		ID:             "analysis-1",
		DatasetVersion: "v1",
		Ranges: []core.RangeResult{
			{Query: core.RangeQuery{From: "1", To: "2"}, Stamps: first},
			{Query: core.RangeQuery{From: "9", To: "5", Mirror: true}, Err: errors.New("Начало диапазона не может быть больше конца")},
		},
		Merged: first,
		Mode:   core.ModeMixed,
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResult(), "file:data.csv", true))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetReport, "Диапазон 1", "Диапазон 2", SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetReport)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Штамп", "Числа"},
		{"2", "20 (4 шт)"},
		{"4", "15 (6 шт) ⇄ 51 (2 шт)"},
		{"4", "40 (4 шт)"},
	}, rows)

	rows, err = f.GetRows("Диапазон 2")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ошибка", rows[0][0])

	rows, err = f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Режим", "Смешанный"}, rows[0])
	assert.Equal(t, []string{"Источник", "file:data.csv"}, rows[1])
	assert.Equal(t, []string{"1", "2", "FALSE", "OK"}, rows[6])
}

func TestWriteXLSX_SingleRangeHasNoRangeSheets(t *testing.T) {
	result := sampleResult()
	result.Ranges = result.Ranges[:1]
	result.Mode = core.ModeNormal

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, result, "file:data.csv", true))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetReport, SheetSummary}, f.GetSheetList())
}

func TestWriteXLSX_RangeSheetsOnlyWithDetail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResult(), "file:data.csv", false))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetReport, SheetSummary}, f.GetSheetList())

	// Failed ranges are still reported in the summary.
	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, "Начало диапазона не может быть больше конца", rows[7][3])
}

func TestWriteValidationCSV(t *testing.T) {
	errs := []core.ValidationError{
		{Kind: core.KindMissingValue, Row: "000005", Position: 6, Message: "Строка 000005: отсутствует значение в позиции 6"},
		{Kind: core.KindDuplicateIdentifier, Value: "000001, 000002", Message: "Найдены дублирующиеся номера строк: 000001, 000002"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteValidationCSV(&buf, errs))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"kind", "row", "position", "value", "message"},
		{"missing_value", "000005", "6", "", "Строка 000005: отсутствует значение в позиции 6"},
		{"duplicate_identifier", "", "", "000001, 000002", "Найдены дублирующиеся номера строк: 000001, 000002"},
	}, records)
}
