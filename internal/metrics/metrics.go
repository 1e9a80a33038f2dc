// Package metrics exposes Prometheus collectors for the stamp service.
//
// Collectors live on a private registry so tests can create as many
// Recorders as they like without duplicate-registration panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stamps"

// Recorder records service and HTTP metrics.
type Recorder struct {
	registry *prometheus.Registry

	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	datasetRows      prometheus.Gauge
	validationErrors prometheus.Gauge
	reloads          *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	admissions       *prometheus.CounterVec
	queueWait        prometheus.Histogram
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Range analyses by mode and result.",
		}, []string{"mode", "result"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of analyze invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"mode"}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the current dataset snapshot.",
		}),
		validationErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_validation_errors",
			Help:      "Validation errors in the current dataset snapshot.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Dataset reloads by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_admissions_total",
			Help:      "Analyze calls admitted or rejected by the slot limiter.",
		}, []string{"result"}),
		queueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_queue_wait_seconds",
			Help:      "Time analyze calls spent waiting for slots.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	r.registry.MustRegister(
		r.analyses,
		r.analysisDuration,
		r.datasetRows,
		r.validationErrors,
		r.reloads,
		r.httpRequests,
		r.admissions,
		r.queueWait,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// ObserveRange counts one analyzed range.
func (r *Recorder) ObserveRange(mode string, ok bool) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(mode, result(ok)).Inc()
}

// ObserveAnalysis records the duration of one analyze invocation.
func (r *Recorder) ObserveAnalysis(mode string, d time.Duration) {
	if r == nil {
		return
	}
	r.analysisDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// ObserveReload records a reload outcome and the resulting dataset size.
func (r *Recorder) ObserveReload(ok bool, rows, validationErrors int) {
	if r == nil {
		return
	}
	r.reloads.WithLabelValues(result(ok)).Inc()
	r.datasetRows.Set(float64(rows))
	r.validationErrors.Set(float64(validationErrors))
}

// ObserveAdmission records a limiter decision and the time spent waiting.
func (r *Recorder) ObserveAdmission(admitted bool, waited time.Duration) {
	if r == nil {
		return
	}
	label := "admitted"
	if !admitted {
		label = "rejected"
	}
	r.admissions.WithLabelValues(label).Inc()
	r.queueWait.Observe(waited.Seconds())
}

// ObserveHTTP counts one HTTP response.
func (r *Recorder) ObserveHTTP(route string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
