package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/JonMunkholm/stamps/internal/logging"
	"github.com/JonMunkholm/stamps/internal/web/templates"
)

// maxDashboardErrors caps the validation errors listed on the dashboard;
// the full list is available as CSV.
const maxDashboardErrors = 100

// handleDashboard renders the main page: dataset status, validation errors
// and the analysis and lookup forms.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ds := s.service.Snapshot()
	data := templates.DashboardData{
		Info:      ds.Info(),
		MaxRanges: s.service.MaxRanges(),
	}
	if ds != nil {
		data.TotalErrors = len(ds.Errors)
		data.Errors = ds.Errors[:min(len(ds.Errors), maxDashboardErrors)]
	}
	s.renderPage(w, r, templates.Dashboard(data))
}

// handleAnalyzePage handles the dashboard form: one textarea of ranges
// sharing the mirror and detail checkboxes.
func (s *Server) handleAnalyzePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, badRequest("invalid form", err.Error()))
		return
	}

	queries, err := parseRangeForm(r.PostForm.Get("ranges"), r.PostForm.Get("mirror"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	detail := checked(r.PostForm.Get("detail"))

	result, err := s.analyze(r, queries)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.renderPage(w, r, templates.Results(templates.ResultsData{
		Result: result,
		Detail: detail,
		Report: s.service.Report(result, detail),
	}))
}

// handleRowPage renders one row looked up by the "number" query parameter.
func (s *Server) handleRowPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.LookupRow(r.URL.Query().Get("number"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderPage(w, r, templates.RowPage(view))
}

// renderPage writes an HTML component. Rendering errors past the first byte
// can only be logged.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

func parseRangeForm(ranges, mirror string) ([]core.RangeQuery, error) {
	return core.ParseRangeList(ranges, checked(mirror))
}

func checked(v string) bool {
	return v == "on" || v == "true" || v == "1"
}
