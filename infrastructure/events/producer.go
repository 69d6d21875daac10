package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/shopfront/order-service/infrastructure/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer  messageWriter
	logger  logger.Logger
	timeout time.Duration
}

// NewKafkaProducer writes to topic on the comma separated brokers.
func NewKafkaProducer(brokers, topic string, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, log)
}

func newProducer(writer messageWriter, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer:  writer,
		logger:  log,
		timeout: 10 * time.Second,
	}
}

// Publish keys the message by order id so every event of one order lands on
// the same partition.
func (p *KafkaProducer) Publish(ctx context.Context, event OrderEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal event failed", "fn", "Publish", "eventId", event.EventID, "error", err)
		return errors.Wrap(err, "json.Marshal failed")
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish event failed",
			"fn", "Publish",
			"eventId", event.EventID,
			"orderId", event.OrderID,
			"error", err)
		return errors.Wrap(err, "WriteMessages failed")
	}

	p.logger.Debug("event published",
		"fn", "Publish",
		"eventId", event.EventID,
		"type", event.Type,
		"orderId", event.OrderID)
	return nil
}

func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher drops every event; used when no brokers are configured.
func NewNoopPublisher() IPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (noopPublisher) Close() error                              { return nil }

var _ IPublisher = (*KafkaProducer)(nil)
