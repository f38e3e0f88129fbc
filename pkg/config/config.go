package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"QuantSignal/internal/services/risk"
	"QuantSignal/internal/services/scoring"
	"QuantSignal/internal/services/signal"
	"QuantSignal/pkg/logger"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxBatchSize    int           `yaml:"max_batch_size"`
		BodyLimit       string        `yaml:"body_limit"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		CORS            bool          `yaml:"cors"`
		RateLimit       struct {
			Enabled   bool    `yaml:"enabled"`
			Burst     float64 `yaml:"burst"`
			PerSecond float64 `yaml:"per_second"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logger logger.Config `yaml:"logger"`
	Digest struct {
		Enabled   bool          `yaml:"enabled"`
		Topic     string        `yaml:"topic"`
		Interval  time.Duration `yaml:"interval"`
		MaxUnique int           `yaml:"max_unique"`
	} `yaml:"digest"`
	Engine struct {
		MinSeriesLen        int     `yaml:"min_series_len"`
		AnnualizationFactor float64 `yaml:"annualization_factor"`
		Benchmark           string  `yaml:"benchmark"`
		Batch               struct {
			Concurrency int    `yaml:"concurrency"`
			Policy      string `yaml:"policy"` // fail_fast or isolate
		} `yaml:"batch"`
		Weights    scoring.Weights `yaml:"weights"`
		Classifier signal.Config   `yaml:"classifier"`
		Risk       risk.Config     `yaml:"risk"`
	} `yaml:"engine"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		SnapshotTopic string   `yaml:"snapshot_topic"`
		AnalysisTopic string   `yaml:"analysis_topic"`
		Producer      struct {
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchSize    int           `yaml:"batch_size"`
			Linger       time.Duration `yaml:"linger"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled       bool          `yaml:"enabled"`
		Host          string        `yaml:"host"`
		Port          int           `yaml:"port"`
		Database      string        `yaml:"database"`
		User          string        `yaml:"user"`
		Password      string        `yaml:"password"`
		Table         string        `yaml:"table"`
		AnalysisTable string        `yaml:"analysis_table"`
		Timeframe     string        `yaml:"timeframe"`
		Lookback      int           `yaml:"lookback"`
		DialTimeout   time.Duration `yaml:"dial_timeout"`
		ReadTimeout   time.Duration `yaml:"read_timeout"`
		MaxOpenConns  int           `yaml:"max_open_conns"`
	} `yaml:"clickhouse"`
	Cache struct {
		TTL             time.Duration `yaml:"ttl"`
		LocalMaxEntries int           `yaml:"local_max_entries"`
		Redis           struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Default returns a configuration that runs without any external service.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.ShutdownTimeout = 15 * time.Second
	c.Server.MaxBatchSize = 500
	c.Server.BodyLimit = "8M"
	c.Server.SlowThreshold = 500 * time.Millisecond
	c.Server.CORS = true
	c.Server.RateLimit.Enabled = true
	c.Server.RateLimit.Burst = 20
	c.Server.RateLimit.PerSecond = 5
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Logger = logger.Config{Level: "info", Format: "json", Output: "stdout"}
	c.Digest.Topic = "quantsignal.logs"
	c.Digest.Interval = 30 * time.Second
	c.Digest.MaxUnique = 100

	c.Engine.MinSeriesLen = 35
	c.Engine.AnnualizationFactor = 365
	c.Engine.Benchmark = "BTC"
	c.Engine.Batch.Concurrency = 16
	c.Engine.Batch.Policy = "fail_fast"
	c.Engine.Weights = scoring.DefaultWeights()
	c.Engine.Classifier = signal.DefaultConfig()
	c.Engine.Risk = risk.DefaultConfig()

	c.Kafka.Brokers = []string{"localhost:9092"}
	c.Kafka.SnapshotTopic = "quantsignal.snapshots"
	c.Kafka.AnalysisTopic = "quantsignal.analyses"
	c.Kafka.Producer.RequiredAcks = -1
	c.Kafka.Producer.Compression = "snappy"
	c.Kafka.Producer.MaxAttempts = 3
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.Linger = 50 * time.Millisecond
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Consumer.GroupID = "quantsignal"
	c.Kafka.Consumer.Workers = 4
	c.Kafka.Consumer.BufferSize = 64
	c.Kafka.Consumer.RetryMax = 3
	c.Kafka.Consumer.BackoffMin = 50 * time.Millisecond
	c.Kafka.Consumer.BackoffMax = 2 * time.Second

	c.ClickHouse.Host = "localhost"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "default"
	c.ClickHouse.User = "default"
	c.ClickHouse.Table = "candles"
	c.ClickHouse.Timeframe = "1d"
	c.ClickHouse.Lookback = 200
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 30 * time.Second
	c.ClickHouse.MaxOpenConns = 10

	c.Cache.TTL = 30 * time.Second
	c.Cache.LocalMaxEntries = 10000
	c.Cache.Redis.Addr = "localhost:6379"
	return &c
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_SNAPSHOT_TOPIC"); v != "" {
		c.Kafka.SnapshotTopic = v
	}
	if v := getenv("KAFKA_ANALYSIS_TOPIC"); v != "" {
		c.Kafka.AnalysisTopic = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("ENGINE_BATCH_POLICY"); v != "" {
		c.Engine.Batch.Policy = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Engine.MinSeriesLen < 2 {
		return fmt.Errorf("engine.min_series_len must be at least 2, got %d", c.Engine.MinSeriesLen)
	}
	if c.Engine.AnnualizationFactor <= 0 {
		return fmt.Errorf("engine.annualization_factor must be positive")
	}
	switch c.Engine.Batch.Policy {
	case "fail_fast", "isolate":
	default:
		return fmt.Errorf("engine.batch.policy must be 'fail_fast' or 'isolate', got '%s'", c.Engine.Batch.Policy)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.SnapshotTopic == "" || c.Kafka.AnalysisTopic == "" {
			return fmt.Errorf("kafka.snapshot_topic and kafka.analysis_topic are required")
		}
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Table == "" {
		return fmt.Errorf("clickhouse.table is required when clickhouse is enabled")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.Burst < 1 || c.Server.RateLimit.PerSecond <= 0) {
		return fmt.Errorf("server.rate_limit needs burst >= 1 and per_second > 0")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}
	return nil
}
