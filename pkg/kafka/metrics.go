package kafka

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	producerMsgsTotal     *prometheus.CounterVec
	producerBytesTotal    *prometheus.CounterVec
	producerLatencyHist   *prometheus.HistogramVec
	consumerMsgsTotal     *prometheus.CounterVec
	consumerQueueFullness *prometheus.GaugeVec
	consumerHandleLatency *prometheus.HistogramVec

	metricsOnce       sync.Once
	metricsRegisterer prometheus.Registerer = prometheus.DefaultRegisterer
)

// SetMetricsRegisterer swaps the registerer used for Kafka metrics. It only has
// an effect before the first producer or consumer is built.
func SetMetricsRegisterer(reg prometheus.Registerer) {
	if reg != nil {
		metricsRegisterer = reg
	}
}

func initMetrics() {
	metricsOnce.Do(func() {
		producerMsgsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsignal_kafka_producer_messages_total",
				Help: "Messages published to Kafka",
			},
			[]string{"topic", "result"},
		)
		producerBytesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsignal_kafka_producer_bytes_total",
				Help: "Payload bytes published to Kafka",
			},
			[]string{"topic"},
		)
		producerLatencyHist = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantsignal_kafka_producer_publish_seconds",
				Help:    "Publish latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
		consumerMsgsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsignal_kafka_consumer_messages_total",
				Help: "Messages handled by the consumer",
			},
			[]string{"topic", "result"},
		)
		consumerQueueFullness = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantsignal_kafka_consumer_queue_fullness",
				Help: "Worker queue utilisation (len/cap)",
			},
			[]string{"topic"},
		)
		consumerHandleLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantsignal_kafka_consumer_handle_seconds",
				Help:    "Handling time per message including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
		metricsRegisterer.MustRegister(
			producerMsgsTotal, producerBytesTotal, producerLatencyHist,
			consumerMsgsTotal, consumerQueueFullness, consumerHandleLatency,
		)
	})
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func observePublish(topic string, bytes int64, count int, dur time.Duration, err error) {
	producerMsgsTotal.WithLabelValues(topic, resultLabel(err)).Add(float64(count))
	if err == nil {
		producerBytesTotal.WithLabelValues(topic).Add(float64(bytes))
	}
	producerLatencyHist.WithLabelValues(topic).Observe(dur.Seconds())
}

func observeHandle(topic string, dur time.Duration, err error) {
	consumerMsgsTotal.WithLabelValues(topic, resultLabel(err)).Inc()
	consumerHandleLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
