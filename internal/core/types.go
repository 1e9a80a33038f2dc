package core

import (
	"strings"
	"time"
)

// PayloadPositions is the number of payload cells that follow the identifier.
const PayloadPositions = 6

// MirrorPositions is the number of payload cells scanned in mirror mode.
const MirrorPositions = 5

// Row is one source line: cell 0 is the row identifier, cells 1..6 the payload.
type Row []string

// ID returns the raw identifier cell, or "" when the row has no cells.
func (r Row) ID() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Cell returns the trimmed cell at pos and whether the row has that position.
func (r Row) Cell(pos int) (string, bool) {
	if pos < 0 || pos >= len(r) {
		return "", false
	}
	return strings.TrimSpace(r[pos]), true
}

// Table is an ordered sequence of rows in source order.
// Tables are treated as read-only once loaded.
type Table []Row

// isAbsentMarker reports whether a trimmed cell is a legitimate blank.
func isAbsentMarker(cell string) bool {
	return cell == "" || strings.EqualFold(cell, "nan")
}

// StampMap maps digit difference -> two-digit number -> displayed count.
type StampMap map[int]map[int]int

// Len returns the number of distinct numbers across all differences.
func (m StampMap) Len() int {
	n := 0
	for _, group := range m {
		n += len(group)
	}
	return n
}

// Mode labels how a report was produced.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMirror
	ModeMixed // multi-range analysis with both modes present
)

// ModeFor returns the mode of a single analysis.
func ModeFor(mirror bool) Mode {
	if mirror {
		return ModeMirror
	}
	return ModeNormal
}

// Label returns the display label used in reports.
func (m Mode) Label() string {
	switch m {
	case ModeMirror:
		return "СКАТ"
	case ModeMixed:
		return "Смешанный"
	default:
		return "Обычный"
	}
}

// String returns a stable machine name, used for metrics labels and JSON.
func (m Mode) String() string {
	switch m {
	case ModeMirror:
		return "mirror"
	case ModeMixed:
		return "mixed"
	default:
		return "normal"
	}
}

// RangeQuery is one inclusive range request as entered by the user.
type RangeQuery struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Mirror bool   `json:"mirror"`
}

// RangeResult is the outcome of analyzing one RangeQuery.
// Exactly one of Stamps or Err is set.
type RangeResult struct {
	Query  RangeQuery
	Stamps StampMap
	Err    error
}

// OK reports whether the range was analyzed successfully.
func (r RangeResult) OK() bool {
	return r.Err == nil
}

// AnalysisResult is the outcome of one analyze invocation over one or more ranges.
type AnalysisResult struct {
	ID             string        // unique per invocation
	DatasetVersion string        // version of the snapshot the ranges were computed on
	Ranges         []RangeResult // same order as the queries
	Merged         StampMap      // merge of all successful ranges
	Mode           Mode
	Duration       time.Duration
}

// Succeeded returns the number of ranges analyzed without error.
func (r *AnalysisResult) Succeeded() int {
	n := 0
	for _, rr := range r.Ranges {
		if rr.OK() {
			n++
		}
	}
	return n
}

// FirstError returns the first per-range error, or nil.
func (r *AnalysisResult) FirstError() error {
	for _, rr := range r.Ranges {
		if rr.Err != nil {
			return rr.Err
		}
	}
	return nil
}

// modeOf derives the report mode for a set of queries.
func modeOf(queries []RangeQuery) Mode {
	if len(queries) == 0 {
		return ModeNormal
	}
	mode := ModeFor(queries[0].Mirror)
	for _, q := range queries[1:] {
		if ModeFor(q.Mirror) != mode {
			return ModeMixed
		}
	}
	return mode
}

// Dataset is an immutable snapshot of the loaded table.
// A reload replaces the whole snapshot; nothing mutates it in place.
type Dataset struct {
	Version  string // uuid assigned at load time
	Source   string // loader name, e.g. "file:data.csv"
	LoadedAt time.Time
	Table    Table
	Errors   []ValidationError // structural problems; non-empty blocks analysis
	LoadErr  error             // non-nil when the source could not be read
}

// Usable reports whether analysis and lookup are allowed on this snapshot.
func (d *Dataset) Usable() bool {
	return d != nil && d.LoadErr == nil && len(d.Errors) == 0
}

// Gate returns the error that blocks queries on this snapshot, or nil.
func (d *Dataset) Gate() error {
	switch {
	case d == nil || d.LoadErr != nil:
		return ErrDatasetUnavailable
	case len(d.Errors) > 0:
		return ErrDatasetInvalid
	default:
		return nil
	}
}

// DatasetInfo summarizes a snapshot for status pages and the API.
type DatasetInfo struct {
	Loaded           bool      `json:"loaded"`
	Version          string    `json:"version,omitempty"`
	Source           string    `json:"source,omitempty"`
	LoadedAt         time.Time `json:"loaded_at,omitzero"`
	Rows             int       `json:"rows"`
	Valid            bool      `json:"valid"`
	ValidationErrors int       `json:"validation_errors"`
	LoadError        string    `json:"load_error,omitempty"`
}

// Info summarizes the snapshot. A nil snapshot reports nothing loaded.
func (d *Dataset) Info() DatasetInfo {
	if d == nil {
		return DatasetInfo{}
	}
	info := DatasetInfo{
		Loaded:           d.LoadErr == nil,
		Version:          d.Version,
		Source:           d.Source,
		LoadedAt:         d.LoadedAt,
		Rows:             len(d.Table),
		Valid:            d.Usable(),
		ValidationErrors: len(d.Errors),
	}
	if d.LoadErr != nil {
		info.LoadError = d.LoadErr.Error()
	}
	return info
}
