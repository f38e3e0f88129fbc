package usecase

import (
	"context"
	"fmt"

	"QuantSignal/internal/domain/models"

	"golang.org/x/sync/errgroup"
)

// BatchPolicy decides what happens to a batch when one asset fails.
type BatchPolicy string

const (
	// BatchFailFast cancels the remaining assets and returns the first error.
	BatchFailFast BatchPolicy = "fail_fast"
	// BatchIsolate records the error on the failing asset and carries on.
	BatchIsolate BatchPolicy = "isolate"
)

func (p BatchPolicy) Valid() bool {
	return p == BatchFailFast || p == BatchIsolate
}

type BatchOptions struct {
	// Concurrency caps in-flight assets; <= 0 runs every asset at once.
	Concurrency int
	Policy      BatchPolicy
}

type BatchResult struct {
	Symbol   string
	Analysis *models.QuantitativeAnalysis
	Err      error
}

type analyzeFunc func(context.Context, models.AssetInput) (*models.QuantitativeAnalysis, error)

// AnalyzeBatch analyses every input concurrently. Results are returned in input
// order regardless of completion order.
func (q *QuantAnalyzer) AnalyzeBatch(ctx context.Context, inputs []models.AssetInput, opts BatchOptions) ([]BatchResult, error) {
	return runBatch(ctx, inputs, opts, q.Analyze)
}

func runBatch(ctx context.Context, inputs []models.AssetInput, opts BatchOptions, analyze analyzeFunc) ([]BatchResult, error) {
	results := make([]BatchResult, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}
	limit := opts.Concurrency
	if limit <= 0 || limit > len(inputs) {
		limit = len(inputs)
	}

	if opts.Policy == BatchIsolate {
		var g errgroup.Group
		g.SetLimit(limit)
		for i, in := range inputs {
			g.Go(func() error {
				a, err := analyze(ctx, in)
				results[i] = BatchResult{Symbol: in.Price.Symbol, Analysis: a, Err: err}
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			a, err := analyze(gctx, in)
			if err != nil {
				return fmt.Errorf("asset %d: %w", i, err)
			}
			results[i] = BatchResult{Symbol: in.Price.Symbol, Analysis: a}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AnalyzePrices is AnalyzeBatch for snapshot-only inputs.
func (q *QuantAnalyzer) AnalyzePrices(ctx context.Context, prices []models.PricePoint, opts BatchOptions) ([]BatchResult, error) {
	inputs := make([]models.AssetInput, len(prices))
	for i, p := range prices {
		inputs[i] = models.AssetInput{Price: p}
	}
	return q.AnalyzeBatch(ctx, inputs, opts)
}

// Analyses drops failed entries, keeping the order of the rest.
func Analyses(results []BatchResult) []*models.QuantitativeAnalysis {
	out := make([]*models.QuantitativeAnalysis, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Analysis != nil {
			out = append(out, r.Analysis)
		}
	}
	return out
}
