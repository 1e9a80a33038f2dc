// Command stampreport analyzes a stamp table from the command line.
//
//	stampreport -source data.csv -range 1-20 -range 21-40 -mirror -detail
//	stampreport -source data.xlsx -sheet Лист1 -row 15
//	stampreport -source data.csv -validate
//
// The report goes to stdout, logs and errors to stderr. Exit status is 0 on
// success, 1 on errors and 2 when the table fails validation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/JonMunkholm/stamps/internal/export"
	"github.com/JonMunkholm/stamps/internal/logging"
	"github.com/JonMunkholm/stamps/internal/source"
)

const (
	exitOK         = 0
	exitError      = 1
	exitValidation = 2
)

// rangeFlags collects repeated -range values.
type rangeFlags []string

func (r *rangeFlags) String() string {
	return strings.Join(*r, ",")
}

func (r *rangeFlags) Set(v string) error {
	if _, err := core.ParseRangeSpec(v, false); err != nil {
		return err
	}
	*r = append(*r, v)
	return nil
}

func (r rangeFlags) queries(mirror bool) []core.RangeQuery {
	qs := make([]core.RangeQuery, 0, len(r))
	for _, spec := range r {
		q, _ := core.ParseRangeSpec(spec, mirror) // checked in Set
		qs = append(qs, q)
	}
	return qs
}

type options struct {
	source   string
	sheet    string
	query    string
	ranges   rangeFlags
	mirror   bool
	detail   bool
	xlsx     string
	row      string
	validate bool
	timeout  time.Duration
	logLevel string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("stampreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.source, "source", "data.csv", "table `location`: file path (.csv/.txt/.xlsx), http(s) URL or postgres DSN")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet for .xlsx sources (default: first sheet)")
	fs.StringVar(&opts.query, "query", source.DefaultQuery, "query for postgres sources")
	fs.Var(&opts.ranges, "range", "range to analyze, e.g. 1-20 (repeatable)")
	fs.BoolVar(&opts.mirror, "mirror", false, "mirror (СКАТ) mode")
	fs.BoolVar(&opts.detail, "detail", false, "add a section per range to the report")
	fs.StringVar(&opts.xlsx, "xlsx", "", "also write the analysis to this XLSX `file`")
	fs.StringVar(&opts.row, "row", "", "print positions 1..6 of this row")
	fs.BoolVar(&opts.validate, "validate", false, "only validate the table")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "load timeout")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	if !opts.validate && opts.row == "" && len(opts.ranges) == 0 {
		fmt.Fprintln(stderr, "stampreport: nothing to do, give -range, -row or -validate")
		fs.Usage()
		return exitError
	}

	slog.SetDefault(logging.New(stderr, opts.logLevel, "text"))

	loader, err := source.New(sourceConfig(opts))
	if err != nil {
		fmt.Fprintln(stderr, "stampreport:", err)
		return exitError
	}
	if c, ok := loader.(interface{ Close() }); ok {
		defer c.Close()
	}

	svc := core.NewService(loader, core.Options{
		MaxRanges:   max(len(opts.ranges), 1),
		LoadTimeout: opts.timeout,
	})
	ds, err := svc.Reload(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "stampreport:", core.FormatUserError(err))
		fmt.Fprintln(stderr, "  ", err)
		return exitError
	}

	if len(ds.Errors) > 0 {
		fmt.Fprintf(stderr, "Найдены ошибки в данных (%d):\n", len(ds.Errors))
		for _, e := range ds.Errors {
			fmt.Fprintln(stderr, "  -", e.Error())
		}
		return exitValidation
	}
	if opts.validate {
		fmt.Fprintf(stdout, "Данные корректны: %d строк (%s)\n", len(ds.Table), ds.Source)
		return exitOK
	}

	if opts.row != "" {
		view, err := svc.LookupRow(opts.row)
		if err != nil {
			fmt.Fprintln(stderr, "stampreport:", core.FormatUserError(err))
			return exitError
		}
		fmt.Fprintf(stdout, "Строка %s: %s\n", view.ID, strings.Join(view.Values, " "))
		if len(opts.ranges) > 0 {
			fmt.Fprintln(stdout)
		}
	}

	if len(opts.ranges) == 0 {
		return exitOK
	}

	result, err := svc.AnalyzeMany(ctx, opts.ranges.queries(opts.mirror))
	if err != nil {
		fmt.Fprintln(stderr, "stampreport:", core.FormatUserError(err))
		return exitError
	}
	if result.Succeeded() == 0 {
		fmt.Fprintln(stderr, "stampreport:", core.FormatUserError(result.FirstError()))
		return exitError
	}

	fmt.Fprintln(stdout, svc.Report(result, opts.detail))

	if opts.xlsx != "" {
		if err := writeXLSX(opts.xlsx, result, ds.Source, opts.detail); err != nil {
			fmt.Fprintln(stderr, "stampreport:", err)
			return exitError
		}
		slog.Info("xlsx written", "path", opts.xlsx)
	}

	if result.Succeeded() < len(result.Ranges) {
		return exitError
	}
	return exitOK
}

// sourceConfig picks the loader kind from the shape of -source.
func sourceConfig(opts options) source.Config {
	cfg := source.Config{Timeout: opts.timeout}
	loc := opts.source
	switch {
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		cfg.Kind, cfg.URL = "http", loc
	case strings.HasPrefix(loc, "postgres://"), strings.HasPrefix(loc, "postgresql://"):
		cfg.Kind, cfg.DatabaseURL, cfg.Query = "postgres", loc, opts.query
	default:
		cfg.Kind, cfg.Path, cfg.Sheet = "file", loc, opts.sheet
	}
	return cfg
}

func writeXLSX(path string, result *core.AnalysisResult, src string, detail bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteXLSX(f, result, src, detail)
}
