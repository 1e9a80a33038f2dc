package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/JonMunkholm/stamps/internal/export"
	"github.com/JonMunkholm/stamps/internal/logging"
)

// AnalyzeResponse is the JSON body of /api/analyze.
type AnalyzeResponse struct {
	ID             string            `json:"id"`
	DatasetVersion string            `json:"dataset_version"`
	Mode           string            `json:"mode"`
	Merged         core.StampMap     `json:"merged"`
	Groups         []core.StampGroup `json:"groups"`
	Succeeded      int               `json:"succeeded"`
	Ranges         []RangeResponse   `json:"ranges,omitempty"` // detail with more than one range
	Failed         []RangeResponse   `json:"failed,omitempty"`
	Report         string            `json:"report"`
	DurationMS     int64             `json:"duration_ms"`
}

// RangeResponse describes one analyzed range.
type RangeResponse struct {
	From   string            `json:"from"`
	To     string            `json:"to"`
	Mirror bool              `json:"mirror"`
	Title  string            `json:"title"`
	Groups []core.StampGroup `json:"groups,omitempty"`
	Error  *ErrorResponse    `json:"error,omitempty"`
}

func toRangeResponse(rr core.RangeResult) RangeResponse {
	resp := RangeResponse{
		From:   rr.Query.From,
		To:     rr.Query.To,
		Mirror: rr.Query.Mirror,
		Title:  core.RangeTitle(rr.Query),
	}
	if rr.OK() {
		resp.Groups = core.Groups(rr.Stamps)
		return resp
	}
	msg := core.MapError(rr.Err)
	resp.Error = &ErrorResponse{Error: msg.Message, Message: msg.Message, Action: msg.Action, Code: msg.Code}
	return resp
}

func toAnalyzeResponse(result *core.AnalysisResult, detail bool, report string) AnalyzeResponse {
	resp := AnalyzeResponse{
		ID:             result.ID,
		DatasetVersion: result.DatasetVersion,
		Mode:           result.Mode.String(),
		Merged:         result.Merged,
		Groups:         core.Groups(result.Merged),
		Succeeded:      result.Succeeded(),
		Report:         report,
		DurationMS:     result.Duration.Milliseconds(),
	}
	for _, rr := range result.Ranges {
		if detail && len(result.Ranges) > 1 {
			resp.Ranges = append(resp.Ranges, toRangeResponse(rr))
		}
		if !rr.OK() {
			resp.Failed = append(resp.Failed, toRangeResponse(rr))
		}
	}
	return resp
}

// analyze runs the queries and fails when no range could be analyzed, so a
// single bad range reports its own error rather than an empty report.
func (s *Server) analyze(r *http.Request, queries []core.RangeQuery) (*core.AnalysisResult, error) {
	result, err := s.service.AnalyzeMany(r.Context(), queries)
	if err != nil {
		return nil, err
	}
	if result.Succeeded() == 0 {
		return nil, result.FirstError()
	}
	return result, nil
}

func (s *Server) analyzeBody(w http.ResponseWriter, r *http.Request) (*core.AnalysisResult, analyzeRequest, bool) {
	req, err := s.decodeAnalyzeRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return nil, req, false
	}
	result, err := s.analyze(r, req.queries())
	if err != nil {
		s.fail(w, r, err)
		return nil, req, false
	}
	return result, req, true
}

// handleAnalyze returns merged stamps, display groups and the report as JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, req, ok := s.analyzeBody(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, toAnalyzeResponse(result, req.Detail, s.service.Report(result, req.Detail)))
}

// handleReport returns the plain-text report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, req, ok := s.analyzeBody(w, r)
	if !ok {
		return
	}
	render.PlainText(w, r, s.service.Report(result, req.Detail))
}

// handleExportXLSX returns the analysis as an XLSX workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	result, req, ok := s.analyzeBody(w, r)
	if !ok {
		return
	}

	source := ""
	if ds := s.service.Snapshot(); ds != nil && ds.Version == result.DatasetVersion {
		source = ds.Source
	}

	filename := fmt.Sprintf("stamps_%s.xlsx", result.ID[:min(8, len(result.ID))])
	w.Header().Set("Content-Type", export.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.WriteXLSX(w, result, source, req.Detail); err != nil {
		logging.FromContext(r.Context()).Error("xlsx export failed", "analysis_id", result.ID, "error", err)
	}
}
