package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key identifies one analysis by symbol, snapshot time, mode and an FNV-64a
// fingerprint of the whole input, so any change to price, series or context
// yields a different key.
func Key(in models.AssetInput, mode models.AnalysisMode) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("fingerprint input: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return fmt.Sprintf("analysis:%s:%d:%s:%016x",
		strings.ToUpper(in.Price.Symbol),
		in.Price.Timestamp.UTC().UnixMilli(),
		strings.ToLower(string(mode)),
		h.Sum64()), nil
}

// AnalysisCache stores analyses as JSON in any BytesCache.
type AnalysisCache struct {
	store BytesCache
}

func NewAnalysisCache(store BytesCache) *AnalysisCache {
	return &AnalysisCache{store: store}
}

func (c *AnalysisCache) Get(ctx context.Context, key string) (*models.QuantitativeAnalysis, bool, error) {
	b, ok, err := c.store.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var a models.QuantitativeAnalysis
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, false, fmt.Errorf("decode cached analysis %s: %w", key, err)
	}
	return &a, true, nil
}

func (c *AnalysisCache) Set(ctx context.Context, key string, a *models.QuantitativeAnalysis, ttl time.Duration) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return c.store.SetBytes(ctx, key, b, ttl)
}

// ttlReader is implemented by shared caches that can report remaining lifetime.
type ttlReader interface {
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Layered reads through a local cache in front of a shared one. Writes go to
// the shared layer first. A read from the shared layer is copied locally for
// at most backfillTTL, and never longer than the shared entry has left.
type Layered struct {
	local       BytesCache
	shared      BytesCache
	backfillTTL time.Duration
}

func NewLayered(local, shared BytesCache, backfillTTL time.Duration) *Layered {
	return &Layered{local: local, shared: shared, backfillTTL: backfillTTL}
}

func (l *Layered) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := l.local.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := l.shared.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = l.local.SetBytes(ctx, key, b, l.localTTL(ctx, key))
	return b, true, nil
}

func (l *Layered) localTTL(ctx context.Context, key string) time.Duration {
	ttl := l.backfillTTL
	r, ok := l.shared.(ttlReader)
	if !ok {
		return ttl
	}
	if left, err := r.TTL(ctx, key); err == nil && left > 0 && (ttl <= 0 || left < ttl) {
		return left
	}
	return ttl
}

func (l *Layered) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := l.shared.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	return l.local.SetBytes(ctx, key, value, ttl)
}

var _ domrepo.AnalysisCache = (*AnalysisCache)(nil)
