package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"QuantSignal/internal/domain/repository"
	"QuantSignal/internal/handler/api"
	internalrepo "QuantSignal/internal/repository"
	icache "QuantSignal/internal/service/cache"
	"QuantSignal/internal/service/ratelimit"
	"QuantSignal/internal/services/risk"
	"QuantSignal/internal/services/scoring"
	"QuantSignal/internal/services/signal"
	"QuantSignal/internal/usecase"
	pkgch "QuantSignal/pkg/clickhouse"
	"QuantSignal/pkg/config"
	xhttp "QuantSignal/pkg/http"
	pkgkafka "QuantSignal/pkg/kafka"
	applogger "QuantSignal/pkg/logger"
	"QuantSignal/pkg/metrics"
	"QuantSignal/pkg/server"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
)

const redisPingTimeout = 5 * time.Second

// ProvideLogger creates the root structured logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// isolateKafkaMetrics sends Kafka client metrics to a registry that is never
// served when metrics are disabled. It must run before the first client is built.
func isolateKafkaMetrics(cfg *config.Config) {
	if !cfg.Metrics.Enabled {
		pkgkafka.SetMetricsRegisterer(prometheus.NewRegistry())
	}
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(context.Background(),
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	isolateKafkaMetrics(cfg)
	p := cfg.Kafka.Producer
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(p.Compression),
		pkgkafka.WithRequiredAcks(p.RequiredAcks),
		pkgkafka.WithBatching(p.BatchSize, p.Linger),
		pkgkafka.WithWriteTimeout(p.WriteTimeout),
		pkgkafka.WithMaxAttempts(p.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRedisCache connects the shared cache tier, or returns nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*icache.RedisCache, error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rc, nil
}

// ProvideSeriesStore exposes ClickHouse candles as history, or nil without ClickHouse.
func ProvideSeriesStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.SeriesStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHSeriesStore(ch, cfg.ClickHouse.Table, l)
}

// ProvideAnalysisPublisher fans analyses out to every enabled sink.
func ProvideAnalysisPublisher(producer *pkgkafka.Producer, ch *pkgch.Client, cfg *config.Config) (repository.AnalysisPublisher, error) {
	var sinks internalrepo.FanoutPublisher
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaPublisher(producer, cfg.Kafka.AnalysisTopic))
	}
	if ch != nil && cfg.ClickHouse.AnalysisTable != "" {
		sink, err := internalrepo.NewCHAnalysisSink(ch.DB(), cfg.ClickHouse.AnalysisTable)
		if err != nil {
			return nil, fmt.Errorf("analysis sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}

// ProvideAnalysisCache layers an in-process TTL cache over Redis when available.
func ProvideAnalysisCache(rc *icache.RedisCache, cfg *config.Config) repository.AnalysisCache {
	if cfg.Cache.TTL <= 0 {
		return nil
	}
	var store icache.BytesCache = icache.NewTTLCache(cfg.Cache.LocalMaxEntries, cfg.Cache.TTL)
	if rc != nil {
		store = icache.NewLayered(store, rc, cfg.Cache.TTL)
	}
	return icache.NewAnalysisCache(store)
}

// ProvideAnalyzer builds the stateless analysis pipeline from engine config.
func ProvideAnalyzer(cfg *config.Config) *usecase.QuantAnalyzer {
	e := cfg.Engine
	return usecase.NewQuantAnalyzer(
		usecase.WithAnalyzerConfig(usecase.AnalyzerConfig{
			MinSeriesLen:  e.MinSeriesLen,
			Annualization: e.AnnualizationFactor,
		}),
		usecase.WithScorer(scoring.NewScorer(scoring.WithWeights(e.Weights))),
		usecase.WithClassifier(signal.NewClassifier(e.Classifier)),
		usecase.WithContextualizer(risk.NewContextualizer(e.Risk)),
	)
}

// ProvideAnalysisService wires history, cache, publisher and metrics around the analyzer.
func ProvideAnalysisService(
	analyzer *usecase.QuantAnalyzer,
	store repository.SeriesStore,
	cache repository.AnalysisCache,
	pub repository.AnalysisPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.AnalysisService {
	opts := []usecase.ServiceOption{
		usecase.WithMetrics(m),
		usecase.WithServiceLogger(l.With(applogger.String("component", "analysis"))),
		usecase.WithBatchOptions(usecase.BatchOptions{
			Concurrency: cfg.Engine.Batch.Concurrency,
			Policy:      usecase.BatchPolicy(cfg.Engine.Batch.Policy),
		}),
		usecase.WithMaxBatch(cfg.Server.MaxBatchSize),
	}
	if store != nil {
		tf := repository.NormalizeTimeframe(cfg.ClickHouse.Timeframe)
		opts = append(opts, usecase.WithSeriesStore(store, tf, cfg.ClickHouse.Lookback, cfg.Engine.Benchmark))
	}
	if cache != nil {
		opts = append(opts, usecase.WithAnalysisCache(cache, cfg.Cache.TTL))
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	return usecase.NewAnalysisService(analyzer, opts...)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	isolateKafkaMetrics(cfg)
	c := cfg.Kafka.Consumer
	cl := l.With(applogger.String("component", "kafka_consumer"))
	consumer, err := pkgkafka.NewConsumer(cl,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetHook(pkgkafka.NewHookChain(pkgkafka.HookFuncs{
		Before: func(ctx context.Context, km kafkago.Message, data []byte) (context.Context, []byte, error) {
			if len(data) == 0 {
				return ctx, nil, fmt.Errorf("empty payload at %s/%d@%d", km.Topic, km.Partition, km.Offset)
			}
			return ctx, data, nil
		},
		After: func(_ context.Context, km kafkago.Message, err error) {
			if err != nil {
				cl.Debug("snapshot attempt failed",
					applogger.String("topic", km.Topic),
					applogger.Int("partition", km.Partition),
					applogger.Int64("offset", km.Offset),
					applogger.Error(err))
			}
		},
	}))
	return consumer, nil
}

// ProvideKafkaSnapshotHandler registers the handler for the snapshot topic.
func ProvideKafkaSnapshotHandler(svc *usecase.AnalysisService, m repository.Metrics, cfg *config.Config) *usecase.KafkaSnapshotHandler {
	return usecase.NewKafkaSnapshotHandler(cfg.Kafka.SnapshotTopic, svc, m)
}

// ProvideHTTPHandler rate-limits the batch endpoints when configured and
// serves stored history when a series store exists.
func ProvideHTTPHandler(l *applogger.Logger, svc *usecase.AnalysisService, store repository.SeriesStore, cfg *config.Config) *api.AnalysisEchoHandler {
	var mw []echo.MiddlewareFunc
	if rl := cfg.Server.RateLimit; rl.Enabled {
		mw = append(mw, ratelimit.Middleware(ratelimit.New(rl.Burst, rl.PerSecond)))
	}
	h := api.NewAnalysisEchoHandler(l.With(applogger.String("component", "http")), svc, mw...)
	return h.WithCandles(usecase.NewCandlesUseCase(store))
}

// ProvideHTTPServer creates the Echo server around the API handler.
func ProvideHTTPServer(h *api.AnalysisEchoHandler, l *applogger.Logger, cfg *config.Config) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
		xhttp.WithBodyLimit(cfg.Server.BodyLimit),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORS),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetrics(nil, nil, ""))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application server and attaches the log digest.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSnapshotHandler,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	rc *icache.RedisCache,
) *server.App {
	if cfg.Digest.Enabled && producer != nil {
		l.AttachDigest(&applogger.DigestConfig{
			Interval:  cfg.Digest.Interval,
			MaxUnique: cfg.Digest.MaxUnique,
			Topic:     cfg.Digest.Topic,
			Publisher: pkgkafka.NewDigestPublisher(producer),
		})
	}

	var closers []io.Closer
	if rc != nil {
		closers = append(closers, rc)
	}
	return server.New(cfg, l, srv, consumer, kh, producer, chClient, closers...)
}
