//go:build wireinject
// +build wireinject

package di

import (
	"QuantSignal/pkg/config"
	"QuantSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisCache,

		// Repositories
		ProvideSeriesStore,
		ProvideAnalysisPublisher,
		ProvideAnalysisCache,

		// Use cases
		ProvideAnalyzer,
		ProvideAnalysisService,
		ProvideKafkaConsumer,
		ProvideKafkaSnapshotHandler,

		// Transport
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
