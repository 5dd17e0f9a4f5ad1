package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	asksTotal            *prometheus.CounterVec
	askDuration          *prometheus.HistogramVec
	attemptsPerAsk       *prometheus.HistogramVec
	sufficientTotal      *prometheus.CounterVec
	retrievedChunks      *prometheus.HistogramVec
	collaboratorDuration *prometheus.HistogramVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	asksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cqa",
			Subsystem: "pipeline",
			Name:      "asks_total",
			Help:      "Total answered questions by category and routing strategy.",
		},
		[]string{"service", "category", "strategy"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cqa",
			Subsystem: "pipeline",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "strategy"},
	)
	attemptsPerAsk := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cqa",
			Subsystem: "pipeline",
			Name:      "attempts",
			Help:      "Distribution of retrieval attempts per answered question.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	sufficientTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cqa",
			Subsystem: "pipeline",
			Name:      "answers_total",
			Help:      "Total answers by final sufficiency verdict.",
		},
		[]string{"service", "sufficient"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cqa",
			Subsystem: "pipeline",
			Name:      "retrieved_chunks",
			Help:      "Distribution of deduplicated chunks per retrieval round.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	collaboratorDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cqa",
			Subsystem: "collaborator",
			Name:      "call_duration_seconds",
			Help:      "Duration of collaborator calls (LLM, stores, broker) by operation and outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		asksTotal,
		askDuration,
		attemptsPerAsk,
		sufficientTotal,
		retrievedChunks,
		collaboratorDuration,
	)

	return &PipelineMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		asksTotal:            asksTotal,
		askDuration:          askDuration,
		attemptsPerAsk:       attemptsPerAsk,
		sufficientTotal:      sufficientTotal,
		retrievedChunks:      retrievedChunks,
		collaboratorDuration: collaboratorDuration,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPRequestStarted and HTTPRequestFinished bracket one in-flight request;
// the HTTP adapter's logging middleware drives both from its own recorder.
func (m *PipelineMetrics) HTTPRequestStarted() {
	m.requestInFlight.Inc()
}

func (m *PipelineMetrics) HTTPRequestFinished() {
	m.requestInFlight.Dec()
}

func (m *PipelineMetrics) RecordHTTPRequest(service, method, path string, status int, elapsed time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) RecordAsk(service string, result *domain.PipelineResult, duration time.Duration) {
	if result == nil {
		return
	}
	m.asksTotal.WithLabelValues(service, string(result.Category), string(result.Strategy)).Inc()
	m.askDuration.WithLabelValues(service, string(result.Strategy)).Observe(duration.Seconds())
	if result.Attempts > 0 {
		m.attemptsPerAsk.WithLabelValues(service).Observe(float64(result.Attempts))
	}
	m.sufficientTotal.WithLabelValues(service, strconv.FormatBool(result.Score.Sufficient)).Inc()
	if result.Strategy == domain.RouteRetrieve {
		m.RecordRetrievedChunks(service, result.RetrievedChunks)
	}
}

func (m *PipelineMetrics) RecordRetrievedChunks(service string, count int) {
	m.retrievedChunks.WithLabelValues(service).Observe(float64(count))
}

func (m *PipelineMetrics) ObserveCollaboratorCall(service, operation string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.collaboratorDuration.WithLabelValues(service, operation, outcome).Observe(elapsed.Seconds())
}
