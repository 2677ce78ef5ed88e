package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/observability/metrics"
)

// Routing decisions for failed messages.
const (
	RouteDeadLetter = "dlq"
	RouteRequeue    = "requeue"
	RouteParked     = "parked"
)

// Sender publishes a message to a topic.
type Sender interface {
	SendTo(ctx context.Context, topic string, msg Message) error
}

// RetryPolicy wires the bounded retry loop: ingress failures go to the
// dead-letter topic, the requeuer sends them back to ingress after Delay
// until MaxAttempts failures, then parks them.
type RetryPolicy struct {
	IngressTopic    string
	DeadLetterTopic string
	ParkingTopic    string
	MaxAttempts     int
	Delay           time.Duration
}

// DeadLetterRouter forwards failed messages. A forward is retried with
// capped exponential backoff until it succeeds or the context ends, so the
// source offset is only marked once the message is safely elsewhere.
type DeadLetterRouter struct {
	sender  Sender
	policy  RetryPolicy
	retrier *retrier.Retrier
}

// NewDeadLetterRouter wires dependencies.
func NewDeadLetterRouter(sender Sender, policy RetryPolicy) *DeadLetterRouter {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &DeadLetterRouter{
		sender:  sender,
		policy:  policy,
		retrier: retrier.New(retrier.LimitedExponentialBackoff(8, 200*time.Millisecond, 10*time.Second), nil).WithInfiniteRetry(),
	}
}

// IngressRoute is where a message that failed on the ingress topic goes.
func IngressRoute(err error) string {
	if IsPermanent(err) {
		return RouteParked
	}
	return RouteDeadLetter
}

// RequeueRoute is where a dead-lettered message goes next.
func RequeueRoute(msg Message, maxAttempts int) string {
	if msg.Attempt >= maxAttempts {
		return RouteParked
	}
	return RouteRequeue
}

// HandleFailure is the FailureHandler of the ingress consumer.
func (r *DeadLetterRouter) HandleFailure(ctx context.Context, msg Message, cause error) error {
	msg.Attempt++
	msg.LastError = cause.Error()

	route := IngressRoute(cause)
	topic := r.policy.DeadLetterTopic
	if route == RouteParked {
		topic = r.policy.ParkingTopic
	}
	if err := r.forward(ctx, topic, msg); err != nil {
		return err
	}
	metrics.RecordDeadLetter(route)
	fields := []zap.Field{zap.String("route", route), zap.Int("attempt", msg.Attempt), zap.String("cause", msg.LastError)}
	if route == RouteParked {
		logger.ErrorCtx(ctx, "message parked", fields...)
	} else {
		logger.WarnCtx(ctx, "message dead-lettered", fields...)
	}
	return nil
}

// HandleMessage is the handler of the dead-letter consumer. It blocks for
// the requeue delay before sending the message back to ingress.
func (r *DeadLetterRouter) HandleMessage(ctx context.Context, msg Message) error {
	route := RequeueRoute(msg, r.policy.MaxAttempts)
	if route == RouteParked {
		if err := r.forward(ctx, r.policy.ParkingTopic, msg); err != nil {
			return err
		}
		metrics.RecordDeadLetter(route)
		logger.ErrorCtx(ctx, "message parked after max attempts",
			zap.Int("attempt", msg.Attempt), zap.String("cause", msg.LastError))
		return nil
	}

	if r.policy.Delay > 0 {
		timer := time.NewTimer(r.policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err := r.forward(ctx, r.policy.IngressTopic, msg); err != nil {
		return err
	}
	metrics.RecordDeadLetter(route)
	logger.InfoCtx(ctx, "message requeued", zap.Int("attempt", msg.Attempt))
	return nil
}

func (r *DeadLetterRouter) forward(ctx context.Context, topic string, msg Message) error {
	msg.Topic, msg.Partition, msg.Offset = "", 0, 0
	err := r.retrier.RunCtx(ctx, func(ctx context.Context) error {
		return r.sender.SendTo(ctx, topic, msg)
	})
	if err != nil {
		return fmt.Errorf("forward to %s: %w", topic, err)
	}
	return nil
}

// Abort is a FailureHandler that leaves the message unmarked.
func Abort(_ context.Context, _ Message, err error) error {
	return err
}
