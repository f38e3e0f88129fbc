package repository

import (
	"context"
	"time"

	"QuantSignal/internal/domain/models"
)

// AnalysisPublisher ships finished analyses downstream.
type AnalysisPublisher interface {
	Publish(ctx context.Context, a *models.QuantitativeAnalysis) error
	PublishBatch(ctx context.Context, analyses []*models.QuantitativeAnalysis) error
}

// AnalysisCache stores analyses by key. A miss is (nil, false, nil).
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*models.QuantitativeAnalysis, bool, error)
	Set(ctx context.Context, key string, a *models.QuantitativeAnalysis, ttl time.Duration) error
}

type Metrics interface {
	RecordAnalysis(a *models.QuantitativeAnalysis)
	RecordCache(hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
