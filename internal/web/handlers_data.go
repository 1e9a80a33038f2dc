package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/JonMunkholm/stamps/internal/export"
	"github.com/JonMunkholm/stamps/internal/logging"
)

// StatusResponse is the JSON body of /api/status.
type StatusResponse struct {
	Dataset core.DatasetInfo   `json:"dataset"`
	Limiter core.LimiterStatus `json:"limiter"`
}

// ValidationResponse is the JSON body of /api/validation.
type ValidationResponse struct {
	Valid  bool                   `json:"valid"`
	Count  int                    `json:"count"`
	ByKind map[core.ErrorKind]int `json:"by_kind,omitempty"`
	Errors []core.ValidationError `json:"errors"`
}

// handleStatus reports the current snapshot and limiter state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, StatusResponse{
		Dataset: s.service.Snapshot().Info(),
		Limiter: s.service.LimiterStatus(),
	})
}

// handleValidation lists the validation errors of the current snapshot.
func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	errs, err := s.service.Validate()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if errs == nil {
		errs = []core.ValidationError{}
	}
	render.JSON(w, r, ValidationResponse{
		Valid:  len(errs) == 0,
		Count:  len(errs),
		ByKind: core.CountByKind(errs),
		Errors: errs,
	})
}

// handleValidationExport downloads the validation errors as CSV.
func (s *Server) handleValidationExport(w http.ResponseWriter, r *http.Request) {
	errs, err := s.service.Validate()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	filename := fmt.Sprintf("validation_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", export.CSVContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.WriteValidationCSV(w, errs); err != nil {
		logging.FromContext(r.Context()).Error("validation export failed", "error", err)
	}
}

// handleRow returns positions 1..6 of one row.
func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.LookupRow(chi.URLParam(r, "rowNumber"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// handleReload reloads the dataset from the configured source. A failed load
// leaves the dataset unavailable, so it is reported as 503.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Reload(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	logging.FromContext(r.Context()).Info("dataset reloaded via api",
		"version", ds.Version,
		"rows", len(ds.Table),
		"ip", r.RemoteAddr,
	)
	render.JSON(w, r, StatusResponse{
		Dataset: ds.Info(),
		Limiter: s.service.LimiterStatus(),
	})
}

// handleHealth reports liveness; it does not look at the dataset.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleReady reports readiness: 503 until a usable dataset is loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Snapshot().Gate(); err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "unavailable", "reason": core.MapError(err).Code})
		return
	}
	render.JSON(w, r, map[string]string{"status": "ready"})
}
