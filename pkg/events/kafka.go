package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gorider/gorider-api/pkg/logger"
)

// KafkaPublisher writes ride events to a topic keyed by ride id
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// NewKafkaPublisher creates an async writer. Delivery failures are only
// visible in the log, never to the request that published.
func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) *KafkaPublisher {
	p := &KafkaPublisher{logger: log}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   p.completion,
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev RideEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal ride event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.RideID),
		Value: data,
	})
}

func (p *KafkaPublisher) completion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	p.logger.Error("Failed to deliver ride events",
		logger.Int("count", len(messages)),
		logger.String("topic", p.writer.Topic),
		logger.Err(err),
	)
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
