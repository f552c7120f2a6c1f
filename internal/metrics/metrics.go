// Package metrics exposes Prometheus collectors for runs, chunks, records,
// LLM calls and HTTP requests.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
)

const namespace = "debtx"

type Metrics struct {
	Registry *prometheus.Registry

	runs       *prometheus.CounterVec
	chunks     *prometheus.CounterVec
	records    *prometheus.CounterVec
	runSeconds prometheus.Histogram
	llmSeconds *prometheus.HistogramVec
	httpReqs   *prometheus.CounterVec
	httpSecs   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, plus Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Extraction runs by outcome kind (\"ok\" when no failure).",
		}, []string{"kind"}),
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Chunks by outcome: sent, skipped, malformed, failed.",
		}, []string{"outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Validated records by outcome.",
		}, []string{"outcome"}),
		runSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one extraction run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		llmSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of completion calls.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9),
		}, []string{"provider", "outcome"}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.runs, m.chunks, m.records, m.runSeconds, m.llmSeconds, m.httpReqs, m.httpSecs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ChunkFinished implements pipeline.Observer.
func (m *Metrics) ChunkFinished(_ int, kind common.ErrorKind, _ time.Duration) {
	m.chunks.WithLabelValues("sent").Inc()
	switch kind {
	case common.KindNone:
	case common.KindMalformedServiceResponse:
		m.chunks.WithLabelValues("malformed").Inc()
	default:
		m.chunks.WithLabelValues("failed").Inc()
	}
}

// RunFinished implements pipeline.Observer.
func (m *Metrics) RunFinished(res *pipeline.Result) {
	kind := string(res.Kind)
	if kind == "" {
		kind = "ok"
	}
	m.runs.WithLabelValues(kind).Inc()
	m.chunks.WithLabelValues("skipped").Add(float64(res.Summary.ChunksSkipped))
	m.records.WithLabelValues("accepted").Add(float64(res.Summary.RecordsAccepted))
	m.records.WithLabelValues("rejected").Add(float64(res.Summary.RecordsRejected))
	m.records.WithLabelValues("duplicate").Add(float64(res.Summary.Duplicates))
	m.runSeconds.Observe(float64(res.Summary.ElapsedMs) / 1000)
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	m.httpReqs.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpSecs.WithLabelValues(method, route).Observe(d.Seconds())
}

// InstrumentCompleter times every completion made through c.
func (m *Metrics) InstrumentCompleter(c llm.Completer) llm.Completer {
	return &timedCompleter{next: c, hist: m.llmSeconds}
}

type timedCompleter struct {
	next llm.Completer
	hist *prometheus.HistogramVec
}

func (t *timedCompleter) Name() string { return t.next.Name() }

func (t *timedCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	start := time.Now()
	resp, err := t.next.Complete(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.hist.WithLabelValues(t.next.Name(), outcome).Observe(time.Since(start).Seconds())
	return resp, err
}

var _ pipeline.Observer = (*Metrics)(nil)
