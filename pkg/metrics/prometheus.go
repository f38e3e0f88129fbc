package metrics

import (
	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal  *prometheus.CounterVec
	cacheTotal     *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastRisk       *prometheus.GaugeVec
	lastConfidence *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New registers the collectors on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		analysesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsignal_analyses_total",
				Help: "Completed analyses by signal and mode",
			},
			[]string{"signal", "mode"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsignal_cache_requests_total",
				Help: "Analysis cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastRisk: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantsignal_last_risk_score",
				Help: "Final risk score of the latest analysis per symbol",
			},
			[]string{"symbol"},
		),
		lastConfidence: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantsignal_last_confidence",
				Help: "Confidence of the latest analysis per symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantsignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordAnalysis(a *models.QuantitativeAnalysis) {
	if a == nil {
		return
	}
	r.analysesTotal.WithLabelValues(string(a.Signal), string(a.Mode)).Inc()
	r.lastRisk.WithLabelValues(a.Symbol).Set(float64(a.RiskScore))
	r.lastConfidence.WithLabelValues(a.Symbol).Set(float64(a.Confidence))
}

func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards everything; handy for tests and for disabling metrics.
type Nop struct{}

func (Nop) RecordAnalysis(*models.QuantitativeAnalysis) {}
func (Nop) RecordCache(bool)                            {}
func (Nop) RecordError(string)                          {}
func (Nop) RecordLatency(string, float64)               {}

var (
	_ domrepo.Metrics = (*Recorder)(nil)
	_ domrepo.Metrics = Nop{}
)
