package realtime

import (
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
)

// ConnectionID identifies one live transport connection.
type ConnectionID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// Connection is an authenticated live connection.
type Connection struct {
	ID     ConnectionID
	UserID kernel.UUID
	Role   order.Role
}

// Actor is the identity the connection acts as.
func (c Connection) Actor() order.Actor {
	return order.Actor{Role: c.Role, ID: c.UserID}
}

// Topic names a stream of events.
type Topic string

const (
	TopicRidersAvailable Topic = "role:rider:available"
	TopicAdminAll        Topic = "role:admin:all"

	orderTopicPrefix = "order:"
)

// OrderTopic is the per-order stream followed by the order's parties.
func OrderTopic(id kernel.UUID) Topic {
	return Topic(orderTopicPrefix + id.String())
}

// ParseTopic validates a client-supplied topic. For order topics the order id
// is returned as well.
func ParseTopic(s string) (Topic, kernel.UUID, error) {
	switch t := Topic(s); t {
	case TopicRidersAvailable, TopicAdminAll:
		return t, kernel.UUID{}, nil
	}
	if raw, ok := strings.CutPrefix(s, orderTopicPrefix); ok {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return "", kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("topic", err)
		}
		return OrderTopic(id), id, nil
	}
	return "", kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("topic", fmt.Errorf("%q is not a known topic", s))
}

func (t Topic) String() string {
	return string(t)
}
