// Package drawmsg moves draw requests across Kafka.
package drawmsg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lottery/internal/domain/draw"
	"lottery/internal/kafka"
)

// Sender is the part of kafka.Producer the publisher needs.
type Sender interface {
	Send(ctx context.Context, msg kafka.Message) error
}

// Publisher converts draw requests into Kafka messages.
type Publisher struct {
	sender Sender
	now    func() time.Time
}

// NewPublisher constructs a Publisher.
func NewPublisher(sender Sender) *Publisher {
	return &Publisher{sender: sender, now: time.Now}
}

// Publish pushes a draw request onto Kafka. The returned id is the message
// key and follows the request through retries.
func (p *Publisher) Publish(ctx context.Context, req draw.Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	msg := kafka.Message{Key: id, Value: payload, CreatedAt: p.now()}
	if err := p.sender.Send(ctx, msg); err != nil {
		return "", err
	}
	return id, nil
}
