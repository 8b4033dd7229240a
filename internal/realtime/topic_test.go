package realtime_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopic(t *testing.T) {
	id := kernel.NewUUID()

	topic, orderID, err := realtime.ParseTopic("order:" + id.String())
	require.NoError(t, err)
	assert.Equal(t, realtime.OrderTopic(id), topic)
	assert.True(t, id.IsEqual(orderID))

	topic, orderID, err = realtime.ParseTopic("role:rider:available")
	require.NoError(t, err)
	assert.Equal(t, realtime.TopicRidersAvailable, topic)
	assert.True(t, orderID.IsZero())

	for _, bad := range []string{"", "order:", "order:42", "role:customer:all", "orders"} {
		_, _, err := realtime.ParseTopic(bad)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid, bad)
	}
}

func TestNewConnectionID_IsUnique(t *testing.T) {
	assert.NotEqual(t, realtime.NewConnectionID(), realtime.NewConnectionID())
}
