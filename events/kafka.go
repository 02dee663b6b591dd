// Package events publishes and consumes order lifecycle events on Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"food-delivery/models"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// KafkaPublisher keys messages by order id so one order's events stay ordered.
type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
}

type Handler func(ctx context.Context, ev models.OrderEvent) error

// Consumer feeds decoded order events to Handle until the context ends.
type Consumer struct {
	Reader MessageReader
	Handle Handler
	Log    *slog.Logger
}

func (c *Consumer) Start(ctx context.Context) {
	c.Log.Info("order event consumer started")
	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.Log.Info("order event consumer stopped")
				return
			}
			c.Log.Error("read order event", slog.Any("error", err))
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	var ev models.OrderEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.Log.Warn("skip malformed order event", slog.Int64("offset", msg.Offset), slog.Any("error", err))
		return
	}
	if err := c.Handle(ctx, ev); err != nil {
		c.Log.Error("handle order event",
			slog.Int64("order_id", ev.OrderID),
			slog.String("type", string(ev.Type)),
			slog.Any("error", err),
		)
	}
}

// StatusChanges adapts a status callback to a Handler; placement events are ignored.
func StatusChanges(fn func(ctx context.Context, customerID, orderID int64, status models.OrderStatus) error) Handler {
	return func(ctx context.Context, ev models.OrderEvent) error {
		if ev.Type == models.EventOrderPlaced {
			return nil
		}
		return fn(ctx, ev.CustomerID, ev.OrderID, ev.Status)
	}
}
