// Package export renders analysis results and validation errors as
// downloadable files.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/xuri/excelize/v2"
)

// Sheet names. Excel limits names to 31 characters.
const (
	SheetReport  = "Отчёт"
	SheetSummary = "Сводка"
)

// XLSXContentType is the media type of the workbook download.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes the analysis as a workbook.
//
// The report sheet holds the merged result, one row per display line with
// the stamp in column A. With detail set and several ranges analyzed, each
// range gets its own sheet in input order. The summary sheet always lists
// the ranges and their outcome.
func WriteXLSX(w io.Writer, result *core.AnalysisResult, source string, detail bool) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetReport); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeGroups(f, SheetReport, result.Merged, header); err != nil {
		return err
	}

	if detail && len(result.Ranges) > 1 {
		for i, rr := range result.Ranges {
			name := rangeSheetName(i)
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %s: %w", name, err)
			}
			if !rr.OK() {
				if err := f.SetSheetRow(name, "A1", &[]any{"Ошибка", rr.Err.Error()}); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				continue
			}
			if err := writeGroups(f, name, rr.Stamps, header); err != nil {
				return err
			}
		}
	}

	if err := writeSummary(f, result, source, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func rangeSheetName(i int) string {
	return "Диапазон " + strconv.Itoa(i+1)
}

func writeGroups(f *excelize.File, sheet string, stamps core.StampMap, header int) error {
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Штамп", "Числа"}); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	row := 2
	for _, g := range core.Groups(stamps) {
		for _, line := range g.Lines {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &[]any{g.Difference, line}); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, row, err)
			}
			row++
		}
	}

	return f.SetColWidth(sheet, "B", "B", 32)
}

func writeSummary(f *excelize.File, result *core.AnalysisResult, source string, header int) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"Режим", result.Mode.Label()},
		{"Источник", source},
		{"Версия данных", result.DatasetVersion},
		{"Анализ", result.ID},
		{},
		{"Начало", "Конец", "СКАТ", "Результат"},
	}
	for _, rr := range result.Ranges {
		outcome := "OK"
		if !rr.OK() {
			outcome = rr.Err.Error()
		}
		rows = append(rows, []any{rr.Query.From, rr.Query.To, rr.Query.Mirror, outcome})
	}

	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(SheetSummary, "A6", "D6", header); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}
	return f.SetColWidth(SheetSummary, "A", "D", 18)
}
