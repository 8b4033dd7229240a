// Package kafkajournal appends every order event to a Kafka topic. Messages are
// keyed by order id, so one order's events stay in one partition and in order.
package kafkajournal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/adapters/out/eventsink"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/realtime/wire"

	"github.com/segmentio/kafka-go"
)

const SinkName = "kafka-journal"

// MessageWriter is the part of *kafka.Writer the journal uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	QueueSize    int
	WriteTimeout time.Duration
}

// NewWriter returns a hash-balanced writer that waits for all in-sync replicas.
func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// New wraps writer in an asynchronous dispatcher sink.
func New(writer MessageWriter, cfg Config, logger *slog.Logger) *eventsink.Async {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	write := func(ctx context.Context, e order.DomainEvent) error {
		msg, err := NewMessage(e)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return writer.WriteMessages(ctx, msg)
	}

	return eventsink.NewAsync(SinkName, cfg.QueueSize, write, writer.Close, logger)
}

// NewMessage encodes e as a journal record.
func NewMessage(e order.DomainEvent) (kafka.Message, error) {
	record := wire.NewRecord(e)
	value, err := json.Marshal(record)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", record.EventType, err)
	}

	return kafka.Message{
		Key:   []byte(record.OrderID),
		Value: value,
		Time:  record.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(record.EventID)},
			{Key: "event_type", Value: []byte(record.EventType)},
			{Key: "producer", Value: []byte(record.Producer)},
		},
	}, nil
}
