package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"lottery/internal/observability/metrics"
)

// Producer wraps a synchronous Kafka producer.
type Producer struct {
	client sarama.SyncProducer
	topic  string
}

// NewProducer creates and connects a producer. topic is the default
// destination used by Send.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_5_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	producer, err := sarama.NewSyncProducer(cleanBrokers(brokers), cfg)
	if err != nil {
		return nil, err
	}
	return NewProducerFromClient(producer, topic), nil
}

// NewProducerFromClient wraps an existing sarama producer.
func NewProducerFromClient(client sarama.SyncProducer, topic string) *Producer {
	return &Producer{client: client, topic: topic}
}

// Close shuts down the producer.
func (p *Producer) Close() error {
	return p.client.Close()
}

// Send publishes msg to the default topic.
func (p *Producer) Send(ctx context.Context, msg Message) error {
	return p.SendTo(ctx, p.topic, msg)
}

// SendTo publishes msg to topic.
func (p *Producer) SendTo(_ context.Context, topic string, msg Message) error {
	defer observe("producer_send", time.Now())
	_, _, err := p.client.SendMessage(msg.producerMessage(topic))
	return err
}

func cleanBrokers(brokers []string) []string {
	cleaned := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func observe(operation string, start time.Time) {
	metrics.ObserveKafkaOperation(operation, time.Since(start))
}
