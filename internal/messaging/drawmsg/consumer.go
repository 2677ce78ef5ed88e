package drawmsg

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"lottery/internal/domain/draw"
	"lottery/internal/kafka"
	"lottery/internal/logger"
)

// Handler reacts to decoded draw requests.
type Handler interface {
	HandleDraw(ctx context.Context, req draw.Request) error
}

// HandlerFunc makes ordinary functions usable as draw handlers.
type HandlerFunc func(ctx context.Context, req draw.Request) error

// HandleDraw implements Handler.
func (f HandlerFunc) HandleDraw(ctx context.Context, req draw.Request) error {
	return f(ctx, req)
}

// Decode wraps handler as a kafka.MessageHandler. Payloads that cannot be
// decoded are reported as permanent failures.
func Decode(handler Handler) kafka.MessageHandler {
	return kafka.HandlerFunc(func(ctx context.Context, msg kafka.Message) error {
		var req draw.Request
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			return kafka.PermanentError(fmt.Errorf("decode draw request: %w", err))
		}
		if msg.Attempt > 0 {
			logger.InfoCtx(ctx, "retrying draw request",
				zap.Int("attempt", msg.Attempt), zap.String("last_error", msg.LastError))
		}
		return handler.HandleDraw(ctx, req)
	})
}

// Consumer wraps a low-level Kafka consumer and decodes draw requests.
type Consumer struct {
	consumer *kafka.Consumer
}

// NewConsumer wires the handler through the low-level consumer. Failed
// requests are given to onFailure.
func NewConsumer(brokers []string, groupID, topic string, handler Handler, onFailure kafka.FailureHandler) (*Consumer, error) {
	cons, err := kafka.NewConsumer(brokers, groupID, topic, Decode(handler), onFailure)
	if err != nil {
		return nil, err
	}
	return &Consumer{consumer: cons}, nil
}

// Start begins consuming requests.
func (c *Consumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close cleans up resources.
func (c *Consumer) Close() error {
	return c.consumer.Close()
}
