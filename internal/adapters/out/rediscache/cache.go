// Package rediscache keeps the latest order summary in Redis for the resync
// read path. It is fed by the dispatcher (as a sink) and by ledger reads.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/adapters/out/eventsink"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	SinkName = "redis-status-cache"

	// KeyOrderStatus is order_status:{order_id}, a hash of version and payload.
	KeyOrderStatus = "order_status:%s"

	DefaultTTL = 5 * time.Minute
)

// putIfNewer never replaces an entry with an older version.
var putIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'v')
if current and tonumber(current) > tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'd', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

var _ ports.StatusCache = (*Cache)(nil)

type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func New(rdb redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// NewClient opens a client with short dial and I/O timeouts.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// Get returns the cached summary. A miss is (Summary{}, false, nil).
func (c *Cache) Get(ctx context.Context, id kernel.UUID) (order.Summary, bool, error) {
	raw, err := c.rdb.HGet(ctx, key(id), "d").Bytes()
	if errors.Is(err, redis.Nil) {
		return order.Summary{}, false, nil
	}
	if err != nil {
		return order.Summary{}, false, err
	}

	var entry entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return order.Summary{}, false, fmt.Errorf("decode cached order %s: %w", id, err)
	}
	summary, err := entry.summary()
	if err != nil {
		return order.Summary{}, false, err
	}
	return summary, true, nil
}

// Put stores summary unless a newer version is already cached.
func (c *Cache) Put(ctx context.Context, summary order.Summary) error {
	payload, err := json.Marshal(newEntry(summary))
	if err != nil {
		return err
	}
	return putIfNewer.Run(ctx, c.rdb, []string{key(summary.ID)},
		summary.Version, payload, c.ttl.Milliseconds()).Err()
}

// Sink returns a dispatcher sink that refreshes the cache from committed events.
func (c *Cache) Sink(queueSize int, logger *slog.Logger) *eventsink.Async {
	return eventsink.NewAsync(SinkName, queueSize, func(ctx context.Context, e order.DomainEvent) error {
		summary, ok := summaryOf(e)
		if !ok {
			return nil
		}
		return c.Put(ctx, summary)
	}, nil, logger)
}

func summaryOf(e order.DomainEvent) (order.Summary, bool) {
	switch ev := e.(type) {
	case order.OrderPlaced:
		return ev.Order, true
	case order.StatusChanged:
		return ev.Order, true
	case order.OrderAvailable:
		return ev.Order, true
	case order.OrderClaimed:
		return ev.Order, true
	case order.OrderExpired:
		return ev.Order, true
	default:
		return order.Summary{}, false
	}
}

func key(id kernel.UUID) string {
	return fmt.Sprintf(KeyOrderStatus, id)
}

type entry struct {
	ID             kernel.UUID  `json:"id"`
	RestaurantID   kernel.UUID  `json:"restaurant_id"`
	CustomerID     kernel.UUID  `json:"customer_id"`
	CourierID      *kernel.UUID `json:"courier_id,omitempty"`
	Status         order.Status `json:"status"`
	Lat            float64      `json:"lat"`
	Lng            float64      `json:"lng"`
	Amount         int64        `json:"amount"`
	OfferExpiresAt *time.Time   `json:"offer_expires_at,omitempty"`
	Version        int          `json:"version"`
}

func newEntry(s order.Summary) entry {
	return entry{
		ID:             s.ID,
		RestaurantID:   s.RestaurantID,
		CustomerID:     s.CustomerID,
		CourierID:      s.CourierID,
		Status:         s.Status,
		Lat:            s.Location.Lat(),
		Lng:            s.Location.Lng(),
		Amount:         s.Amount,
		OfferExpiresAt: s.OfferExpiresAt,
		Version:        s.Version,
	}
}

func (e entry) summary() (order.Summary, error) {
	location, err := kernel.NewLocation(e.Lat, e.Lng)
	if err != nil {
		return order.Summary{}, err
	}
	return order.Summary{
		ID:             e.ID,
		RestaurantID:   e.RestaurantID,
		CustomerID:     e.CustomerID,
		CourierID:      e.CourierID,
		Status:         e.Status,
		Location:       location,
		Amount:         e.Amount,
		OfferExpiresAt: e.OfferExpiresAt,
		Version:        e.Version,
	}, nil
}
