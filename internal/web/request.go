package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/stamps/internal/core"
)

// rangeRequest is one range of an analyze request.
type rangeRequest struct {
	From   string `json:"from" validate:"required,max=32"`
	To     string `json:"to" validate:"required,max=32"`
	Mirror bool   `json:"mirror"`
}

// analyzeRequest is the body of /api/analyze, /api/report and /api/export/xlsx.
// The per-request range limit is enforced by the service.
type analyzeRequest struct {
	Ranges []rangeRequest `json:"ranges" validate:"required,min=1,dive"`
	Detail bool           `json:"detail"`
}

func (req analyzeRequest) queries() []core.RangeQuery {
	qs := make([]core.RangeQuery, len(req.Ranges))
	for i, rr := range req.Ranges {
		qs[i] = core.RangeQuery{
			From:   strings.TrimSpace(rr.From),
			To:     strings.TrimSpace(rr.To),
			Mirror: rr.Mirror,
		}
	}
	return qs
}

// newValidator reports field names by their JSON tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAnalyzeRequest reads and validates a JSON analyze body, bounded by
// the configured maximum body size.
func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, error) {
	var req analyzeRequest

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return req, err
		case errors.Is(err, io.EOF):
			return req, badRequest("empty body")
		default:
			return req, badRequest("invalid JSON", err.Error())
		}
	}

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return req, badRequest("invalid request", err.Error())
		}
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, describeField(fe))
		}
		return req, badRequest("validation failed", details...)
	}

	return req, nil
}

func describeField(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "analyzeRequest.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
