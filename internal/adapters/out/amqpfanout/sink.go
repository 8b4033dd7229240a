package amqpfanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/adapters/out/eventsink"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/realtime/wire"

	amqp "github.com/rabbitmq/amqp091-go"
)

const SinkName = "amqp-fanout"

// Publisher sends one message to the bound exchange. *Client implements it.
type Publisher interface {
	Publish(ctx context.Context, msg amqp.Publishing) error
	Close() error
}

type Config struct {
	QueueSize      int
	PublishTimeout time.Duration
}

// New builds the sink. Each event is published as a persistent JSON journal record.
func New(publisher Publisher, cfg Config, logger *slog.Logger) *eventsink.Async {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	write := func(ctx context.Context, e order.DomainEvent) error {
		msg, err := NewPublishing(e)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return publisher.Publish(ctx, msg)
	}

	return eventsink.NewAsync(SinkName, cfg.QueueSize, write, publisher.Close, logger)
}

func NewPublishing(e order.DomainEvent) (amqp.Publishing, error) {
	record := wire.NewRecord(e)
	body, err := json.Marshal(record)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", record.EventType, err)
	}

	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    record.EventID,
		Type:         record.EventType,
		AppId:        record.Producer,
		Timestamp:    record.OccurredAt,
		Headers: amqp.Table{
			"order_id": record.OrderID,
		},
		Body: body,
	}, nil
}
