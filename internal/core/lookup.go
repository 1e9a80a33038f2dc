package core

// RowView is a single row prepared for display: payload positions 1..6.
type RowView struct {
	ID     string   `json:"id"`
	Values []string `json:"values"` // index 0 is position 1; shorter rows yield fewer values
}

// LookupRow finds the row whose raw identifier equals the normalized input.
func LookupRow(table Table, input string) (RowView, error) {
	id, ok := NormalizeRowNumber(input)
	if !ok {
		return RowView{}, &AnalysisError{Kind: KindInvalidRowNumber, Input: input}
	}

	for _, row := range table {
		if row.ID() != id {
			continue
		}
		last := min(len(row), PayloadPositions+1)
		values := make([]string, 0, PayloadPositions)
		for pos := 1; pos < last; pos++ {
			values = append(values, row[pos])
		}
		return RowView{ID: id, Values: values}, nil
	}

	return RowView{}, &AnalysisError{Kind: KindRowNotFound, Input: id}
}
