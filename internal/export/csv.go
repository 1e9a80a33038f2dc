package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/stamps/internal/core"
)

// CSVContentType is the media type of CSV downloads.
const CSVContentType = "text/csv; charset=utf-8"

var validationHeader = []string{"kind", "row", "position", "value", "message"}

// WriteValidationCSV writes validation errors with a header row.
// A UTF-8 BOM is written first so spreadsheet tools detect the encoding.
func WriteValidationCSV(w io.Writer, errs []core.ValidationError) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(validationHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, e := range errs {
		position := ""
		if e.Position > 0 {
			position = strconv.Itoa(e.Position)
		}
		if err := cw.Write([]string{string(e.Kind), e.Row, position, e.Value, e.Message}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
