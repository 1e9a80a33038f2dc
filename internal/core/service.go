package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Loader supplies the raw table. Implementations live in internal/source.
type Loader interface {
	Load(ctx context.Context) (Table, error)
	Name() string
}

// Recorder receives service metrics. *metrics.Recorder satisfies it.
type Recorder interface {
	ObserveRange(mode string, ok bool)
	ObserveAnalysis(mode string, d time.Duration)
	ObserveReload(ok bool, rows, validationErrors int)
	ObserveAdmission(admitted bool, waited time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRange(string, bool)             {}
func (nopRecorder) ObserveAnalysis(string, time.Duration) {}
func (nopRecorder) ObserveReload(bool, int, int)          {}
func (nopRecorder) ObserveAdmission(bool, time.Duration)  {}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	MaxRanges   int           // ranges per analyze call (default 20)
	MaxSpan     int64         // identifiers per range (default 1,000,000)
	Parallelism int           // ranges analyzed concurrently per call (default 4)
	Slots       int           // ranges under analysis across all calls (default DefaultAnalysisSlots)
	MaxWait     time.Duration // wait for slots (default DefaultMaxWaitTime)
	LoadTimeout time.Duration // per reload (default 30s)
	Recorder    Recorder
}

func (o Options) withDefaults() Options {
	if o.MaxRanges <= 0 {
		o.MaxRanges = 20
	}
	if o.MaxSpan <= 0 {
		o.MaxSpan = 1_000_000
	}
	if o.Parallelism <= 0 {
		o.Parallelism = 4
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = 30 * time.Second
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

// Service holds the current dataset snapshot and serves queries against it.
//
// The snapshot is swapped atomically on reload. Each query reads a single
// snapshot for its whole duration, so results always reflect exactly one
// dataset version.
type Service struct {
	loader  Loader
	opts    Options
	limiter *Limiter

	current  atomic.Pointer[Dataset]
	reloadMu sync.Mutex // serializes reloads; queries never take it
}

// NewService creates a Service. Call Reload to load the first snapshot.
func NewService(loader Loader, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		loader:  loader,
		opts:    opts,
		limiter: NewLimiter(opts.Slots, opts.MaxWait),
	}
}

// Reload reads the table from the loader, validates it and swaps it in.
//
// A load failure still installs a snapshot (with LoadErr set) so that
// queries report the dataset as unavailable instead of serving stale data.
// The returned error is the load error; validation problems are not errors
// here and are available from Validate.
func (s *Service) Reload(ctx context.Context) (*Dataset, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	loadCtx, cancel := context.WithTimeout(ctx, s.opts.LoadTimeout)
	defer cancel()

	start := time.Now()
	table, err := s.loader.Load(loadCtx)

	ds := &Dataset{
		Version:  uuid.NewString(),
		Source:   s.loader.Name(),
		LoadedAt: time.Now(),
	}

	if err != nil {
		ds.LoadErr = fmt.Errorf("load %s: %w", s.loader.Name(), err)
		s.current.Store(ds)
		s.opts.Recorder.ObserveReload(false, 0, 0)
		slog.Error("dataset load failed",
			"source", ds.Source,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return ds, ds.LoadErr
	}

	ds.Table = table
	ds.Errors = Validate(table)
	s.current.Store(ds)
	s.opts.Recorder.ObserveReload(true, len(table), len(ds.Errors))

	slog.Info("dataset loaded",
		"source", ds.Source,
		"version", ds.Version,
		"rows", len(table),
		"validation_errors", len(ds.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if len(ds.Errors) > 0 {
		slog.Warn("dataset failed validation, analysis disabled",
			"errors", len(ds.Errors),
			"by_kind", CountByKind(ds.Errors),
		)
	}

	return ds, nil
}

// Snapshot returns the current dataset, or nil before the first Reload.
func (s *Service) Snapshot() *Dataset {
	return s.current.Load()
}

// Validate returns the validation errors of the current snapshot.
func (s *Service) Validate() ([]ValidationError, error) {
	ds := s.Snapshot()
	if ds == nil || ds.LoadErr != nil {
		return nil, ErrDatasetUnavailable
	}
	return ds.Errors, nil
}

// AnalyzeOne analyzes a single range.
func (s *Service) AnalyzeOne(ctx context.Context, q RangeQuery) (StampMap, error) {
	result, err := s.AnalyzeMany(ctx, []RangeQuery{q})
	if err != nil {
		return nil, err
	}
	rr := result.Ranges[0]
	return rr.Stamps, rr.Err
}

// AnalyzeMany analyzes every range against one snapshot and merges the
// successful ones. Request-level problems (no usable dataset, too many
// ranges, busy server) are returned as an error; per-range problems are
// recorded in the result.
func (s *Service) AnalyzeMany(ctx context.Context, queries []RangeQuery) (*AnalysisResult, error) {
	if err := s.checkQueries(queries); err != nil {
		return nil, err
	}

	ds := s.Snapshot()
	if err := ds.Gate(); err != nil {
		return nil, err
	}

	permit, err := s.limiter.Acquire(ctx, len(queries))
	s.opts.Recorder.ObserveAdmission(err == nil, permit.Waited)
	if err != nil {
		slog.Warn("analysis rejected", append(logAttrs(ctx),
			"ranges", len(queries),
			"waited_ms", permit.Waited.Milliseconds(),
			"error", err,
		)...)
		return nil, err
	}
	defer s.limiter.Release(permit)

	result := AnalyzeMany(ctx, ds.Table, queries, s.opts.Parallelism)
	result.DatasetVersion = ds.Version

	for _, rr := range result.Ranges {
		s.opts.Recorder.ObserveRange(ModeFor(rr.Query.Mirror).String(), rr.OK())
	}
	s.opts.Recorder.ObserveAnalysis(result.Mode.String(), result.Duration)

	slog.Debug("analysis completed", append(logAttrs(ctx),
		"analysis_id", result.ID,
		"dataset_version", ds.Version,
		"ranges", len(queries),
		"slots", permit.Weight,
		"succeeded", result.Succeeded(),
		"mode", result.Mode.String(),
		"duration_ms", result.Duration.Milliseconds(),
	)...)

	return result, nil
}

// LookupRow returns positions 1..6 of one row.
func (s *Service) LookupRow(input string) (RowView, error) {
	ds := s.Snapshot()
	if err := ds.Gate(); err != nil {
		return RowView{}, err
	}
	return LookupRow(ds.Table, input)
}

// Report renders the plain-text report of an analysis.
func (s *Service) Report(result *AnalysisResult, detail bool) string {
	return FormatDetailedReport(result, detail)
}

// LimiterStatus exposes the analysis limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForAnalyses blocks until in-flight analyses finish or ctx ends.
func (s *Service) WaitForAnalyses(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// MaxRanges returns the configured per-request range limit.
func (s *Service) MaxRanges() int {
	return s.opts.MaxRanges
}

func (s *Service) checkQueries(queries []RangeQuery) error {
	if len(queries) == 0 {
		return ErrNoRanges
	}
	if len(queries) > s.opts.MaxRanges {
		return fmt.Errorf("%w: %d > %d", ErrTooManyRanges, len(queries), s.opts.MaxRanges)
	}
	for _, q := range queries {
		if span, ok := RangeSpan(q); ok && span > s.opts.MaxSpan {
			return fmt.Errorf("%w: %s-%s spans %d rows (max %d)", ErrRangeTooLarge, q.From, q.To, span, s.opts.MaxSpan)
		}
	}
	return nil
}
