package source

// csv.go implements the lenient delimited-text parser.
//
// Input quirks handled on the fly:
//   - A UTF-8 or UTF-16 BOM selects the encoding and is dropped
//   - Invalid UTF-8 sequences become U+FFFD
//   - The delimiter is sniffed from the first non-blank lines
//   - Files without any known delimiter are split on whitespace
//
// Cells are trimmed and blank lines skipped. A line of delimiters only, such
// as ",,,", is a row of empty cells and is kept so validation can see it.
// Values are never converted.

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/stamps/internal/core"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// candidateDelimiters in order of preference on ties.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// sniffLines is how many non-blank lines are inspected for the delimiter.
const sniffLines = 5

// ParseCSV reads a delimited table from r.
func ParseCSV(r io.Reader) (core.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	delim, ok := sniffDelimiter(data)
	if !ok {
		return splitWhitespace(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var table core.Table
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isBlankLine(record) {
			continue
		}
		table = append(table, cleanRecord(record))
	}
	return table, nil
}

// sniffDelimiter picks the candidate that appears on the most sampled lines,
// preferring the one with the highest total count on a tie.
func sniffDelimiter(data []byte) (rune, bool) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() && len(lines) < sniffLines {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	var best rune
	bestLines, bestTotal := 0, 0
	for _, d := range candidateDelimiters {
		linesWith, total := 0, 0
		for _, line := range lines {
			if n := strings.Count(line, string(d)); n > 0 {
				linesWith++
				total += n
			}
		}
		if linesWith > bestLines || (linesWith == bestLines && total > bestTotal) {
			best, bestLines, bestTotal = d, linesWith, total
		}
	}
	return best, bestLines > 0
}

func splitWhitespace(data []byte) (core.Table, error) {
	var table core.Table
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if fields := strings.Fields(sc.Text()); len(fields) > 0 {
			table = append(table, core.Row(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan text: %w", err)
	}
	return table, nil
}

// isBlankLine reports a line that held no delimiter and no content.
func isBlankLine(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

func cleanRecord(record []string) core.Row {
	row := make(core.Row, len(record))
	for i, cell := range record {
		row[i] = strings.TrimSpace(cell)
	}
	return row
}
