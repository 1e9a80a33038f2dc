package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "inverted range keeps error text",
			err:         &AnalysisError{Kind: KindInvertedRange, From: "000005", To: "000001"},
			wantCode:    "RNG002",
			wantMessage: "Начало диапазона не может быть больше конца",
		},
		{
			name:        "incomplete range lists missing rows",
			err:         &AnalysisError{Kind: KindIncompleteRange, Missing: []string{"000002", "000004"}},
			wantCode:    "RNG003",
			wantMessage: "В диапазоне отсутствуют строки: 000002, 000004",
		},
		{
			name:        "wrapped row not found",
			err:         fmt.Errorf("lookup: %w", &AnalysisError{Kind: KindRowNotFound, Input: "000042"}),
			wantCode:    "ROW002",
			wantMessage: "Строка 000042 не найдена",
		},
		{
			name:        "too many ranges sentinel",
			err:         fmt.Errorf("%w: 30 > 20", ErrTooManyRanges),
			wantCode:    "RNG005",
			wantMessage: "Слишком много диапазонов в одном запросе",
		},
		{
			name:        "invalid dataset",
			err:         ErrDatasetInvalid,
			wantCode:    "DS002",
			wantMessage: "Обнаружены ошибки в данных",
		},
		{
			name:        "busy limiter",
			err:         ErrTooManyAnalyses,
			wantCode:    "ANL001",
			wantMessage: "Сервер занят другими расчётами",
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("analyze: %w", context.DeadlineExceeded),
			wantCode:    "ANL003",
			wantMessage: "Превышено время ожидания",
		},
		{
			name:        "missing file maps by pattern",
			err:         errors.New("open data.csv: no such file or directory"),
			wantCode:    "SRC001",
			wantMessage: "Файл данных не найден",
		},
		{
			name:        "http status maps by pattern",
			err:         errors.New("fetch http://x: unexpected status 503"),
			wantCode:    "SRC003",
			wantMessage: "Источник данных вернул ошибку",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("dial tcp: CONNECTION REFUSED"),
			wantCode:    "SRC002",
			wantMessage: "Источник данных недоступен",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "Произошла непредвиденная ошибка",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_DatasetUnavailableWinsOverLoadText(t *testing.T) {
	// The load error text would match SRC001, but the sentinel is checked first.
	err := fmt.Errorf("%w: open data.csv: no such file or directory", ErrDatasetUnavailable)
	if got := MapError(err).Code; got != "DS001" {
		t.Errorf("MapError() code = %q, want DS001", got)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&AnalysisError{Kind: KindEmptyRange})

	expected := "Нет данных в указанном диапазоне (Code: RNG004). Проверьте границы диапазона"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "typed error is user facing",
			err:  &AnalysisError{Kind: KindInvalidRangeFormat},
			want: true,
		},
		{
			name: "pattern error is user facing",
			err:  errors.New("rate limit exceeded"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalysisError_Is(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &AnalysisError{Kind: KindRowNotFound, Input: "000009"})

	if !errors.Is(err, ErrRowNotFound) {
		t.Error("errors.Is should match on kind regardless of input")
	}
	if errors.Is(err, &AnalysisError{Kind: KindEmptyRange}) {
		t.Error("errors.Is should not match a different kind")
	}
	if got := KindOf(err); got != KindRowNotFound {
		t.Errorf("KindOf() = %q, want %q", got, KindRowNotFound)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}
