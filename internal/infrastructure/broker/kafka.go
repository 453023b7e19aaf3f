package broker

import (
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/pkg/logger"
)

// NewKafkaWriter returns an async writer; delivery failures are only logged.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("Relay: failed to write %d notification(s) to %s: %v", len(messages), topic, err)
			}
		},
	}
}

// NewKafkaReader joins groupID and starts from the newest offset; a fresh
// instance has no subscribers that could want older notifications.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
	})
}
