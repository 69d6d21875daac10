package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/shopfront/order-service/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mutex    sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishOrderPlaced(t *testing.T) {
	writer := &recordingWriter{}
	producer := newProducer(writer, logger.NewNop())

	event := OrderEvent{
		EventID:     "e-1",
		Type:        OrderPlaced,
		OrderID:     "o-1",
		Status:      "placed",
		TotalAmount: "140",
		Currency:    "VND",
		Items:       []OrderItem{{ItemID: "i-1", ProductName: "Linen Shirt", Quantity: 2}},
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, producer.Publish(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "o-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, string(OrderPlaced), string(msg.Headers[0].Value))

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.TotalAmount, decoded.TotalAmount)
	assert.Equal(t, int64(2), decoded.Items[0].Quantity)

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}

func TestPublishFailure(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	producer := newProducer(writer, logger.NewNop())

	err := producer.Publish(context.Background(), OrderEvent{EventID: "e-2", Type: OrderDeleted, OrderID: "o-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNoopPublisher(t *testing.T) {
	publisher := NewNoopPublisher()
	assert.NoError(t, publisher.Publish(context.Background(), OrderEvent{}))
	assert.NoError(t, publisher.Close())
}
