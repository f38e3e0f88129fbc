package kafka

import (
	"context"

	"QuantSignal/pkg/logger"
)

// DigestPublisher ships logger digests through a Producer, one message per entry
// keyed by level so a partition carries a single severity.
type DigestPublisher struct {
	producer *Producer
}

func NewDigestPublisher(p *Producer) *DigestPublisher {
	return &DigestPublisher{producer: p}
}

func (d *DigestPublisher) PublishDigest(ctx context.Context, topic string, entries []logger.DigestEntry) error {
	msgs := make([]Message, len(entries))
	for i, e := range entries {
		msgs[i] = Message{
			Key:     []byte(e.Level),
			Value:   e,
			Headers: map[string]string{"caller": e.Caller},
		}
	}
	return d.producer.PublishBatch(ctx, topic, msgs)
}

var _ logger.Publisher = (*DigestPublisher)(nil)
