package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	pkgkafka "QuantSignal/pkg/kafka"
	pkgmetrics "QuantSignal/pkg/metrics"
)

// KafkaSnapshotHandler consumes market snapshots and runs them through the
// analysis service, which caches and publishes the result.
type KafkaSnapshotHandler struct {
	topic   string
	svc     *AnalysisService
	metrics domrepo.Metrics
}

func NewKafkaSnapshotHandler(topic string, svc *AnalysisService, metrics domrepo.Metrics) *KafkaSnapshotHandler {
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	return &KafkaSnapshotHandler{topic: topic, svc: svc, metrics: metrics}
}

func (h *KafkaSnapshotHandler) Topic() string { return h.topic }

// Handle accepts either a full asset input ({"price": {...}, "series": ...})
// or a bare price point ({"symbol": ..., "price": 123.4, ...}).
func (h *KafkaSnapshotHandler) Handle(ctx context.Context, b []byte) error {
	in, err := decodeSnapshot(b)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if ts := in.Price.Timestamp; !ts.IsZero() {
		h.metrics.RecordLatency("ingest_e2e", time.Since(ts).Seconds())
	}

	_, err = h.svc.Analyze(ctx, in)
	if err != nil {
		h.metrics.RecordError("consumer_analyze")
		return fmt.Errorf("analyze %s: %w", in.Price.Symbol, err)
	}
	return nil
}

func decodeSnapshot(b []byte) (models.AssetInput, error) {
	var in models.AssetInput
	err := json.Unmarshal(b, &in)
	if err == nil {
		return in, nil
	}
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return in, fmt.Errorf("decode snapshot: %w", err)
	}

	var p models.PricePoint
	if err := json.Unmarshal(b, &p); err != nil {
		return in, fmt.Errorf("decode snapshot: %w", err)
	}
	return models.AssetInput{Price: p}, nil
}

var _ pkgkafka.MessageHandler = (*KafkaSnapshotHandler)(nil)
