package core

// error_messages.go maps technical errors to user-facing messages with codes.
//
// Users can quote the code to support staff. Codes by category:
//
// # Range Errors (RNG001-RNG099)
//
//	RNG001 - Invalid range format: a bound has no leading integer
//	RNG002 - Inverted range: start is after end
//	RNG003 - Incomplete range: identifiers inside the range are missing
//	RNG004 - Empty range: no rows fall inside the range
//	RNG005 - Too many ranges in one request
//	RNG006 - Range spans more rows than allowed
//	RNG007 - No ranges requested
//	RNG008 - Range spec could not be split into bounds
//
// # Row Lookup Errors (ROW001-ROW099)
//
//	ROW001 - Invalid row number
//	ROW002 - Row not found
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Dataset unavailable: the source failed to load
//	DS002 - Dataset invalid: validation errors block analysis
//
// # Analysis Errors (ANL001-ANL099)
//
//	ANL001 - Too many concurrent analyses
//	ANL002 - Request cancelled
//	ANL003 - Request timed out
//
// # Source Errors (SRC001-SRC099)
//
// Matched by pattern on the loader error text:
//
//	SRC001 - Source file not found
//	SRC002 - Source unreachable (connection refused / reset)
//	SRC003 - Source returned an HTTP error status
//	SRC004 - Source too large
//	SRC005 - Unknown source kind
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application log for the
// technical error carried alongside the request id.
//
// Typed errors (AnalysisError kinds and sentinels) are classified first with
// errors.As/errors.Is. Only then are patterns tried, case-insensitively, in
// order; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// kindMessages holds the action and code for each analysis/lookup kind.
// The message itself comes from the error so that details (missing rows,
// the looked-up identifier) reach the user.
var kindMessages = map[ErrorKind]UserMessage{
	KindInvalidRangeFormat: {Action: "Укажите номера строк целыми числами", Code: "RNG001"},
	KindInvertedRange:      {Action: "Поменяйте начало и конец диапазона местами", Code: "RNG002"},
	KindIncompleteRange:    {Action: "Добавьте недостающие строки в файл или сузьте диапазон", Code: "RNG003"},
	KindEmptyRange:         {Action: "Проверьте границы диапазона", Code: "RNG004"},
	KindInvalidRowNumber:   {Action: "Укажите номер строки целым числом", Code: "ROW001"},
	KindRowNotFound:        {Action: "Проверьте номер строки", Code: "ROW002"},
}

// sentinelMessages is checked with errors.Is, in order.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrTooManyRanges, UserMessage{Message: "Слишком много диапазонов в одном запросе", Action: "Разделите запрос на несколько", Code: "RNG005"}},
	{ErrRangeTooLarge, UserMessage{Message: "Диапазон слишком велик", Action: "Разбейте диапазон на части", Code: "RNG006"}},
	{ErrNoRanges, UserMessage{Message: "Укажите диапазон для анализа", Action: "Добавьте хотя бы один диапазон", Code: "RNG007"}},
	{ErrBadRangeSpec, UserMessage{Message: "Некорректная запись диапазона", Action: "Используйте формат «начало-конец», например 1-20", Code: "RNG008"}},
	{ErrDatasetUnavailable, UserMessage{Message: "Данные не загружены", Action: "Проверьте источник данных и перезагрузите", Code: "DS001"}},
	{ErrDatasetInvalid, UserMessage{Message: "Обнаружены ошибки в данных", Action: "Исправьте ошибки валидации и перезагрузите данные", Code: "DS002"}},
	{ErrTooManyAnalyses, UserMessage{Message: "Сервер занят другими расчётами", Action: "Повторите попытку через несколько секунд", Code: "ANL001"}},
	{context.Canceled, UserMessage{Message: "Запрос отменён", Action: "Повторите попытку", Code: "ANL002"}},
	{context.DeadlineExceeded, UserMessage{Message: "Превышено время ожидания", Action: "Сузьте диапазон или повторите попытку позже", Code: "ANL003"}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps loader error text (case-insensitive) to user messages.
// More specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "Файл данных не найден",
			Action:  "Проверьте путь SOURCE_PATH",
			Code:    "SRC001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Источник данных недоступен",
			Action:  "Повторите попытку через несколько минут",
			Code:    "SRC002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Соединение с источником данных прервано",
			Action:  "Повторите попытку",
			Code:    "SRC002",
		},
	},
	{
		pattern: "unexpected status",
		msg: UserMessage{
			Message: "Источник данных вернул ошибку",
			Action:  "Проверьте SOURCE_URL",
			Code:    "SRC003",
		},
	},
	{
		pattern: "source too large",
		msg: UserMessage{
			Message: "Файл данных превышает допустимый размер",
			Action:  "Увеличьте SOURCE_MAX_SIZE или уменьшите файл",
			Code:    "SRC004",
		},
	},
	{
		pattern: "unknown source kind",
		msg: UserMessage{
			Message: "Неизвестный тип источника данных",
			Action:  "Используйте file, http или postgres",
			Code:    "SRC005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Слишком много запросов",
			Action:  "Подождите немного и повторите",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Произошла непредвиденная ошибка",
	Action:  "Повторите попытку или обратитесь в поддержку",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := core.Analyze(table, "5", "1", false)
//	msg := core.MapError(err)
//	// msg.Code == "RNG002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ae *AnalysisError
	if errors.As(err, &ae) {
		if msg, ok := kindMessages[ae.Kind]; ok {
			msg.Message = ae.Error()
			return msg
		}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
