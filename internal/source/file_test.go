package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileLoader_CSV(t *testing.T) {
	path := writeFile(t, "data.csv", "000001,15,51,20,30,40,50\n")

	l, err := NewFileLoader(Config{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "file:data.csv", l.Name())

	table, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Table{{"000001", "15", "51", "20", "30", "40", "50"}}, table)
}

func TestFileLoader_Missing(t *testing.T) {
	l, err := NewFileLoader(Config{Path: filepath.Join(t.TempDir(), "nope.csv")})
	require.NoError(t, err)

	_, err = l.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, "SRC001", core.MapError(err).Code)
}

func TestFileLoader_TooLarge(t *testing.T) {
	path := writeFile(t, "big.csv", "000001,11,11,11,11,11,11\n")

	l, err := NewFileLoader(Config{Path: path, MaxSize: 10})
	require.NoError(t, err)

	_, err = l.Load(context.Background())
	assert.ErrorIs(t, err, ErrSourceTooLarge)
	assert.Equal(t, "SRC004", core.MapError(err).Code)
}

func TestFileLoader_RequiresPath(t *testing.T) {
	_, err := NewFileLoader(Config{})
	assert.Error(t, err)
}

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	} else {
		sheet = "Sheet1"
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestFileLoader_XLSX(t *testing.T) {
	path := writeWorkbook(t, "", [][]any{
		{"000001", 15, 51, 20, 30, 40, 50},
		{"000002", "15", "", "nan", 30, 40, 50},
	})

	l, err := NewFileLoader(Config{Path: path})
	require.NoError(t, err)

	table, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, core.Row{"000001", "15", "51", "20", "30", "40", "50"}, table[0])
	assert.Equal(t, "", table[1][2])
	assert.Equal(t, "nan", table[1][3])
}

func TestFileLoader_XLSXNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Stamps", [][]any{{"000007", 11, 22, 33, 44, 55, 66}})

	l, err := NewFileLoader(Config{Path: path, Sheet: "Stamps"})
	require.NoError(t, err)

	table, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "000007", table[0].ID())

	l, err = NewFileLoader(Config{Path: path, Sheet: "Missing"})
	require.NoError(t, err)
	_, err = l.Load(context.Background())
	assert.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	path := writeWorkbook(t, "", [][]any{{"000001", 99}})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	table, err := ParseXLSX(f, "")
	require.NoError(t, err)
	assert.Equal(t, core.Table{{"000001", "99"}}, table)
}
