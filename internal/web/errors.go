package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError (status from statusFor unless the caller knows better)
//  3. Error is mapped via core.MapError to a user-friendly message with a code
//  4. Technical error is logged with the request id for correlation
//  5. User message is rendered as JSON for API clients, as a page otherwise

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/JonMunkholm/stamps/internal/logging"
	"github.com/JonMunkholm/stamps/internal/web/templates"
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// requestError is a malformed or invalid request body or query.
type requestError struct {
	msg     string
	details []string
}

func (e *requestError) Error() string {
	if len(e.details) == 0 {
		return e.msg
	}
	return e.msg + ": " + strings.Join(e.details, "; ")
}

func badRequest(msg string, details ...string) error {
	return &requestError{msg: msg, details: details}
}

// userMessage extends core.MapError with the request-level errors only the
// web layer produces.
func userMessage(err error) (core.UserMessage, []string) {
	var re *requestError
	if errors.As(err, &re) {
		return core.UserMessage{
			Message: "Некорректный запрос: " + re.msg,
			Action:  "Проверьте параметры запроса",
			Code:    "REQ001",
		}, re.details
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return core.UserMessage{
			Message: "Слишком большой запрос",
			Action:  "Уменьшите число диапазонов в запросе",
			Code:    "REQ002",
		}, nil
	}
	return core.MapError(err), nil
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		ae       *core.AnalysisError
		re       *requestError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ae):
		if ae.Kind == core.KindRowNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case errors.As(err, &re),
		errors.Is(err, core.ErrNoRanges),
		errors.Is(err, core.ErrBadRangeSpec),
		errors.Is(err, core.ErrTooManyRanges),
		errors.Is(err, core.ErrRangeTooLarge):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrDatasetUnavailable),
		errors.Is(err, core.ErrDatasetInvalid):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrTooManyAnalyses),
		errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status chosen by statusFor.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, err, statusFor(err))
}

// respondError logs the technical error server-side and returns a
// user-friendly response in the format the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg, details := userMessage(err)

	logger := logging.FromContext(r.Context())
	log := logger.Warn
	if status >= http.StatusInternalServerError {
		log = logger.Error
	}
	log("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
			Details: details,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logger.Warn("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
