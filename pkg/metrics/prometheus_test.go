package metrics

import (
	"testing"

	"QuantSignal/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordAnalysis(&models.QuantitativeAnalysis{Symbol: "BTC", Signal: models.SignalBuy, Mode: models.ModeSeries, RiskScore: 42, Confidence: 71})
	r.RecordAnalysis(&models.QuantitativeAnalysis{Symbol: "BTC", Signal: models.SignalBuy, Mode: models.ModeSeries, RiskScore: 50, Confidence: 60})
	r.RecordAnalysis(nil)
	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordCache(false)
	r.RecordError("invalid_input")
	r.RecordLatency("analyze", 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.analysesTotal.WithLabelValues("BUY", "SERIES")))
	assert.Equal(t, 50.0, testutil.ToFloat64(r.lastRisk.WithLabelValues("BTC")))
	assert.Equal(t, 60.0, testutil.ToFloat64(r.lastConfidence.WithLabelValues("BTC")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("invalid_input")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}
