package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	"rukami/pkg/logger"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAcknowledger struct {
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func delivery(t *testing.T, ack amqp.Acknowledger, tag uint64, body interface{}) amqp.Delivery {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: raw}
}

func TestHandleDelivery(t *testing.T) {
	logger.Discard()

	t.Run("acks processed event", func(t *testing.T) {
		ack := &recordingAcknowledger{}
		var got ProductEvent
		handleDelivery(delivery(t, ack, 1, ProductEvent{Type: EventProductCreated, ProductID: 7}), func(ev ProductEvent) error {
			got = ev
			return nil
		})
		assert.Equal(t, []uint64{1}, ack.acked)
		assert.Empty(t, ack.nacked)
		assert.Equal(t, uint(7), got.ProductID)
		assert.Equal(t, EventProductCreated, got.Type)
	})

	t.Run("requeues on handler error", func(t *testing.T) {
		ack := &recordingAcknowledger{}
		handleDelivery(delivery(t, ack, 2, ProductEvent{Type: EventProductCreated}), func(ProductEvent) error {
			return errors.New("boom")
		})
		assert.Empty(t, ack.acked)
		assert.Equal(t, []uint64{2}, ack.nacked)
		assert.Equal(t, []bool{true}, ack.requeue)
	})

	t.Run("drops malformed body", func(t *testing.T) {
		ack := &recordingAcknowledger{}
		called := false
		handleDelivery(delivery(t, ack, 3, []byte("{not json")), func(ProductEvent) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.Equal(t, []uint64{3}, ack.nacked)
		assert.Equal(t, []bool{false}, ack.requeue)
	})
}
