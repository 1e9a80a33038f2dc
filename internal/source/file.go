package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/xuri/excelize/v2"
)

// FileLoader reads a local CSV/TSV/text or .xlsx file.
type FileLoader struct {
	path    string
	sheet   string
	maxSize int64
}

// NewFileLoader validates cfg and returns a FileLoader.
func NewFileLoader(cfg Config) (*FileLoader, error) {
	if cfg.Path == "" {
		return nil, errors.New("file source: path is required")
	}
	return &FileLoader{path: cfg.Path, sheet: cfg.Sheet, maxSize: cfg.MaxSize}, nil
}

// Name identifies the loader in logs and status output.
func (l *FileLoader) Name() string {
	return "file:" + filepath.Base(l.path)
}

// Load reads and parses the file.
func (l *FileLoader) Load(ctx context.Context) (core.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(l.path)
	if err != nil {
		return nil, err
	}
	if l.maxSize > 0 && info.Size() > l.maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrSourceTooLarge, l.path, info.Size(), l.maxSize)
	}

	if strings.EqualFold(filepath.Ext(l.path), ".xlsx") {
		return l.loadXLSX()
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseCSV(f)
}

func (l *FileLoader) loadXLSX() (core.Table, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, l.sheet)
}

// ParseXLSX reads a workbook from r. An empty sheet name selects the first sheet.
func ParseXLSX(r io.Reader, sheet string) (core.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (core.Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	table := make(core.Table, 0, len(rows))
	for _, cells := range rows {
		// Sheets have no delimiter-only lines; a row without content is padding.
		row := cleanRecord(cells)
		if strings.Join(row, "") == "" {
			continue
		}
		table = append(table, row)
	}

	slog.Debug("workbook sheet read", "sheet", sheet, "rows", len(table))
	return table, nil
}
