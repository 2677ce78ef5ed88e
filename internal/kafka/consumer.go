package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"lottery/internal/logger"
)

// MessageHandler reacts to consumed messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message) error
}

// HandlerFunc allows using functions as MessageHandler.
type HandlerFunc func(ctx context.Context, msg Message) error

// HandleMessage satisfies MessageHandler.
func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// FailureHandler takes over a message the handler failed on. Returning nil
// lets the offset be marked; an error ends the session without marking, so
// the message is consumed again.
type FailureHandler func(ctx context.Context, msg Message, err error) error

// Consumer consumes messages from Kafka and delegates to a handler.
type Consumer struct {
	group     sarama.ConsumerGroup
	topic     string
	handler   MessageHandler
	onFailure FailureHandler
}

// NewConsumer creates a consumer group for the given topic. When onFailure
// is nil, handler errors are logged and the message is skipped.
func NewConsumer(brokers []string, groupID, topic string, handler MessageHandler, onFailure FailureHandler) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_5_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	group, err := sarama.NewConsumerGroup(cleanBrokers(brokers), groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: group, topic: topic, handler: handler, onFailure: onFailure}, nil
}

// Start begins consuming until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			logger.Error("consumer group error", zap.String("topic", c.topic), zap.Error(err))
		}
	}()
	handler := &consumerGroupHandler{handler: c.handler, onFailure: c.onFailure}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close closes the consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler   MessageHandler
	onFailure FailureHandler
}

func (consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case raw, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.consume(session.Context(), raw); err != nil {
				return err
			}
			session.MarkMessage(raw, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) consume(ctx context.Context, raw *sarama.ConsumerMessage) error {
	defer observe("consumer_message", time.Now())
	msg := fromConsumerMessage(raw)
	ctx = logger.WithTraceID(ctx, msg.Key)

	err := h.handler.HandleMessage(ctx, msg)
	if err == nil {
		return nil
	}
	if h.onFailure == nil {
		logger.ErrorCtx(ctx, "handler error", zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}
	if ferr := h.onFailure(ctx, msg, err); ferr != nil {
		logger.ErrorCtx(ctx, "failure handling did not complete, message left unmarked",
			zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset), zap.Error(ferr))
		return ferr
	}
	return nil
}
