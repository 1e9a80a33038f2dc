package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatStampGroup(t *testing.T) {
	tests := []struct {
		name  string
		group map[int]int
		want  []string
	}{
		{
			name:  "empty",
			group: map[int]int{},
			want:  nil,
		},
		{
			name:  "pair shares a line",
			group: map[int]int{51: 2, 15: 6, 40: 4},
			want:  []string{"15 (6 шт) ⇄ 51 (2 шт)", "40 (4 шт)"},
		},
		{
			name:  "self mirror stands alone",
			group: map[int]int{11: 4, 22: 2},
			want:  []string{"11 (4 шт)", "22 (2 шт)"},
		},
		{
			name:  "unpaired number",
			group: map[int]int{29: 2},
			want:  []string{"29 (2 шт)"},
		},
		{
			name:  "pairs in ascending order of smaller member",
			group: map[int]int{82: 2, 28: 2, 73: 4, 37: 6, 19: 2},
			want:  []string{"19 (2 шт)", "28 (2 шт) ⇄ 82 (2 шт)", "37 (6 шт) ⇄ 73 (4 шт)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatStampGroup(tt.group))
		})
	}
}

func TestGroups_SkipsEmptyAndSorts(t *testing.T) {
	groups := Groups(StampMap{5: {50: 4}, 1: {}, 2: {20: 4}})

	assert.Len(t, groups, 2)
	assert.Equal(t, 2, groups[0].Difference)
	assert.Equal(t, 5, groups[1].Difference)
	assert.Equal(t, "Штамп: 2", groups[0].Title())
}

func TestFormatReport(t *testing.T) {
	stamps := StampMap{
		2: {20: 4},
		4: {15: 6, 51: 2, 40: 4},
	}

	want := "=== РЕЗУЛЬТАТЫ АНАЛИЗА ===\n" +
		"\n" +
		"Режим: Обычный\n" +
		"\n" +
		"Штамп: 2\n" +
		"20 (4 шт)\n" +
		"\n" +
		"Штамп: 4\n" +
		"15 (6 шт) ⇄ 51 (2 шт)\n" +
		"40 (4 шт)"

	assert.Equal(t, want, FormatReport(stamps, ModeNormal))
}

func TestFormatReport_EmptyMirror(t *testing.T) {
	assert.Equal(t, "=== РЕЗУЛЬТАТЫ АНАЛИЗА ===\n\nРежим: СКАТ", FormatReport(StampMap{}, ModeMirror))
}

func TestFormatDetailedReport(t *testing.T) {
	first := StampMap{4: {15: 2}}
	second := StampMap{4: {51: 2}}
	result := &AnalysisResult{
		Ranges: []RangeResult{
			{Query: RangeQuery{From: "1", To: "2"}, Stamps: first},
			{Query: RangeQuery{From: "3", To: "4", Mirror: true}, Stamps: second},
			{Query: RangeQuery{From: "9", To: "5"}, Err: &AnalysisError{Kind: KindInvertedRange}},
		},
		Merged: Merge(first, second),
		Mode:   ModeMixed,
	}

	want := "=== РЕЗУЛЬТАТЫ АНАЛИЗА ===\n" +
		"\n" +
		"Режим: Смешанный\n" +
		"\n" +
		"Штамп: 4\n" +
		"15 (2 шт) ⇄ 51 (2 шт)\n" +
		"\n" +
		"--- Диапазон 000001–000002 ---\n" +
		"Штамп: 4\n" +
		"15 (2 шт)\n" +
		"\n" +
		"--- Диапазон 000003–000004 (СКАТ) ---\n" +
		"Штамп: 4\n" +
		"51 (2 шт)\n" +
		"\n" +
		"--- Диапазон 000009–000005 ---\n" +
		"Ошибка: Начало диапазона не может быть больше конца"

	assert.Equal(t, want, FormatDetailedReport(result, true))

	// Without detail only the merged report is rendered.
	assert.Equal(t, FormatReport(result.Merged, ModeMixed), FormatDetailedReport(result, false))
}

func TestFormatDetailedReport_SingleRangeHasNoSections(t *testing.T) {
	result := &AnalysisResult{
		Ranges: []RangeResult{{Query: RangeQuery{From: "1", To: "1"}, Stamps: StampMap{0: {11: 2}}}},
		Merged: StampMap{0: {11: 2}},
	}
	assert.Equal(t, FormatReport(result.Merged, ModeNormal), FormatDetailedReport(result, true))
}

func TestRangeTitle_KeepsRawInvalidBounds(t *testing.T) {
	assert.Equal(t, "--- Диапазон abc–000002 ---", RangeTitle(RangeQuery{From: "abc", To: "2"}))
}
