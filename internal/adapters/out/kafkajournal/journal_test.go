package kafkajournal_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orderflow/internal/adapters/out/kafkajournal"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/realtime/wire"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func statusChanged(id kernel.UUID, from, to order.Status) order.StatusChanged {
	loc, _ := kernel.NewLocation(1, 2)
	return order.StatusChanged{
		Order: order.Summary{
			ID:           id,
			RestaurantID: kernel.NewUUID(),
			CustomerID:   kernel.NewUUID(),
			Status:       to,
			Location:     loc,
			Version:      2,
		},
		From:  from,
		To:    to,
		Actor: order.Actor{Role: order.RoleRestaurant, ID: kernel.NewUUID()},
		At:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewMessage_KeysByOrderAndEncodesRecord(t *testing.T) {
	id := kernel.NewUUID()

	msg, err := kafkajournal.NewMessage(statusChanged(id, order.Pending, order.Confirmed))
	require.NoError(t, err)

	assert.Equal(t, id.String(), string(msg.Key))

	var record wire.Record
	require.NoError(t, json.Unmarshal(msg.Value, &record))
	assert.Equal(t, order.EventStatusChanged, record.EventType)
	assert.Equal(t, "pending", record.FromStatus)
	assert.Equal(t, "confirmed", record.ToStatus)
	assert.Equal(t, "restaurant", record.ActorRole)
	assert.Equal(t, wire.Producer, record.Producer)
	assert.NotEmpty(t, record.EventID)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, record.EventID, headers["event_id"])
	assert.Equal(t, order.EventStatusChanged, headers["event_type"])
}

func TestJournal_WritesEventsInPublishOrder(t *testing.T) {
	writer := &fakeWriter{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	journal := kafkajournal.New(writer, kafkajournal.Config{QueueSize: 8}, logger)
	assert.Equal(t, kafkajournal.SinkName, journal.Name())

	id := kernel.NewUUID()
	journal.Publish(t.Context(), statusChanged(id, order.Pending, order.Confirmed))
	journal.Publish(t.Context(), statusChanged(id, order.Confirmed, order.Preparing))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.NoError(t, journal.Run(ctx))

	require.Len(t, writer.msgs, 2)
	for i, want := range []string{"confirmed", "preparing"} {
		var record wire.Record
		require.NoError(t, json.Unmarshal(writer.msgs[i].Value, &record))
		assert.Equal(t, want, record.ToStatus)
	}
	assert.True(t, writer.closed)
}

func TestJournal_WriteFailureDoesNotStopSink(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	journal := kafkajournal.New(writer, kafkajournal.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	journal.Publish(t.Context(), statusChanged(kernel.NewUUID(), order.Pending, order.Cancelled))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.NoError(t, journal.Run(ctx))
	assert.Empty(t, writer.msgs)
	assert.True(t, writer.closed)
}
