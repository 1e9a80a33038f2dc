package source

import (
	"bytes"
	"strings"
	"testing"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  core.Table
	}{
		{
			name:  "comma",
			input: "000001,15,51,20,30,40,50\n000002,15,15,20,30,40,50\n",
			want: core.Table{
				{"000001", "15", "51", "20", "30", "40", "50"},
				{"000002", "15", "15", "20", "30", "40", "50"},
			},
		},
		{
			name:  "semicolon with blanks and nan",
			input: "000001;15;;nan;30; 40 ;50\r\n",
			want:  core.Table{{"000001", "15", "", "nan", "30", "40", "50"}},
		},
		{
			name:  "tab",
			input: "000001\t11\t22\n",
			want:  core.Table{{"000001", "11", "22"}},
		},
		{
			name:  "pipe",
			input: "000001|11|22\n000002|33|44\n",
			want:  core.Table{{"000001", "11", "22"}, {"000002", "33", "44"}},
		},
		{
			name:  "whitespace fallback",
			input: "000001  11 22\n\n   \n000002 33   44\n",
			want:  core.Table{{"000001", "11", "22"}, {"000002", "33", "44"}},
		},
		{
			name:  "blank lines skipped",
			input: "\n000001,11\n   \n\n000002,22\n",
			want:  core.Table{{"000001", "11"}, {"000002", "22"}},
		},
		{
			name:  "delimiter-only line kept as empty cells",
			input: "000001,11\n,,,\n000002,22\n",
			want:  core.Table{{"000001", "11"}, {"", "", "", ""}, {"000002", "22"}},
		},
		{
			name:  "ragged rows kept as is",
			input: "000001,11,22,33,44,55,66\n000002,11\n",
			want:  core.Table{{"000001", "11", "22", "33", "44", "55", "66"}, {"000002", "11"}},
		},
		{
			name:  "quoted cells",
			input: "\"000001\",\"1,5\",22\n",
			want:  core.Table{{"000001", "1,5", "22"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV_StripsBOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("000001,11\n")...)

	got, err := ParseCSV(bytes.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "000001", got[0].ID())
}

func TestParseCSV_ReplacesInvalidUTF8(t *testing.T) {
	input := []byte("000001,1\xff1\n")

	got, err := ParseCSV(bytes.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1�1", got[0][1])
}

func TestSniffDelimiter_PrefersMostLines(t *testing.T) {
	// Commas appear inside one line only; semicolons on every line.
	data := []byte("000001;1,1;22\n000002;33;44\n000003;55;66\n")

	d, ok := sniffDelimiter(data)
	assert.True(t, ok)
	assert.Equal(t, ';', d)
}
