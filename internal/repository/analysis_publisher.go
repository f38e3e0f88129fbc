package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	pkgkafka "QuantSignal/pkg/kafka"
)

type batchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
}

// KafkaPublisher writes analyses to a topic keyed by symbol.
type KafkaPublisher struct {
	producer batchProducer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, a *models.QuantitativeAnalysis) error {
	return p.PublishBatch(ctx, []*models.QuantitativeAnalysis{a})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, analyses []*models.QuantitativeAnalysis) error {
	msgs := make([]pkgkafka.Message, 0, len(analyses))
	for _, a := range analyses {
		if a == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(a.Symbol),
			Value: a,
			Headers: map[string]string{
				"signal": string(a.Signal),
				"mode":   string(a.Mode),
			},
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// CHAnalysisSink stores a flat row per analysis for signal history queries.
type CHAnalysisSink struct {
	db    *sql.DB
	table string
}

func NewCHAnalysisSink(db *sql.DB, table string) (*CHAnalysisSink, error) {
	if !validIdentifier(table) {
		return nil, fmt.Errorf("invalid analysis table: %q", table)
	}
	return &CHAnalysisSink{db: db, table: table}, nil
}

func (s *CHAnalysisSink) Publish(ctx context.Context, a *models.QuantitativeAnalysis) error {
	return s.PublishBatch(ctx, []*models.QuantitativeAnalysis{a})
}

func (s *CHAnalysisSink) PublishBatch(ctx context.Context, analyses []*models.QuantitativeAnalysis) error {
	const chunkSize = 1000
	for start := 0; start < len(analyses); start += chunkSize {
		end := min(start+chunkSize, len(analyses))
		q, args := buildAnalysisInsert(s.table, analyses[start:end])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert analyses: %w", err)
		}
	}
	return nil
}

const analysisColumns = 10

func buildAnalysisInsert(table string, analyses []*models.QuantitativeAnalysis) (string, []any) {
	values := make([]string, 0, len(analyses))
	args := make([]any, 0, len(analyses)*analysisColumns)
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", analysisColumns), ", ") + ")"
	for _, a := range analyses {
		if a == nil || a.Symbol == "" {
			continue
		}
		values = append(values, placeholder)
		args = append(args,
			a.Timestamp,
			a.Symbol,
			string(a.Mode),
			string(a.Signal),
			a.CombinedScore,
			a.Confidence,
			a.RiskScore,
			string(a.Risk.Level),
			a.Composite.Momentum.Score,
			a.Composite.MeanReversion.Score,
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, mode, signal, combined_score, confidence, risk_score, risk_level, momentum, mean_reversion) VALUES %s",
		table, strings.Join(values, ","))
	return q, args
}

// FanoutPublisher forwards to every publisher and joins their errors.
type FanoutPublisher []domrepo.AnalysisPublisher

func (f FanoutPublisher) Publish(ctx context.Context, a *models.QuantitativeAnalysis) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f FanoutPublisher) PublishBatch(ctx context.Context, analyses []*models.QuantitativeAnalysis) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishBatch(ctx, analyses); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ domrepo.AnalysisPublisher = (*KafkaPublisher)(nil)
	_ domrepo.AnalysisPublisher = (*CHAnalysisSink)(nil)
	_ domrepo.AnalysisPublisher = FanoutPublisher(nil)
)
