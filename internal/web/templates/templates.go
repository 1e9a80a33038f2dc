// Package templates holds the templ components of the web UI.
//
// Edit the .templ files and run `templ generate`; the _templ.go files are
// generated.
package templates

import "github.com/JonMunkholm/stamps/internal/core"

const timeLayout = "2006-01-02 15:04:05"

// DashboardData feeds the main page.
type DashboardData struct {
	Info        core.DatasetInfo
	Errors      []core.ValidationError // possibly truncated
	TotalErrors int
	MaxRanges   int
}

// ResultsData feeds the analysis results page.
type ResultsData struct {
	Result *core.AnalysisResult
	Detail bool
	Report string
}
