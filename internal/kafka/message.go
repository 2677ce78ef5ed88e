package kafka

import (
	"errors"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// Header names carried by every message.
const (
	HeaderMessageID = "x-message-id"
	HeaderAttempt   = "x-attempt"
	HeaderError     = "x-error"
	HeaderCreatedAt = "x-created-at"
)

// Message is a payload plus the envelope used for tracing and retries.
// Attempt counts failed processing rounds.
type Message struct {
	Key       string
	Value     []byte
	Attempt   int
	LastError string
	CreatedAt time.Time

	// Set on consumed messages only.
	Topic     string
	Partition int32
	Offset    int64
}

func (m Message) producerMessage(topic string) *sarama.ProducerMessage {
	headers := []sarama.RecordHeader{
		{Key: []byte(HeaderMessageID), Value: []byte(m.Key)},
		{Key: []byte(HeaderAttempt), Value: []byte(strconv.Itoa(m.Attempt))},
	}
	if m.LastError != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte(HeaderError), Value: []byte(m.LastError)})
	}
	if !m.CreatedAt.IsZero() {
		headers = append(headers, sarama.RecordHeader{Key: []byte(HeaderCreatedAt), Value: []byte(m.CreatedAt.UTC().Format(time.RFC3339Nano))})
	}
	pm := &sarama.ProducerMessage{
		Topic:   topic,
		Value:   sarama.ByteEncoder(m.Value),
		Headers: headers,
	}
	if m.Key != "" {
		pm.Key = sarama.StringEncoder(m.Key)
	}
	return pm
}

func fromConsumerMessage(msg *sarama.ConsumerMessage) Message {
	m := Message{
		Key:       string(msg.Key),
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
	for _, h := range msg.Headers {
		if h == nil {
			continue
		}
		switch string(h.Key) {
		case HeaderMessageID:
			if m.Key == "" {
				m.Key = string(h.Value)
			}
		case HeaderAttempt:
			if n, err := strconv.Atoi(string(h.Value)); err == nil && n >= 0 {
				m.Attempt = n
			}
		case HeaderError:
			m.LastError = string(h.Value)
		case HeaderCreatedAt:
			if ts, err := time.Parse(time.RFC3339Nano, string(h.Value)); err == nil {
				m.CreatedAt = ts
			}
		}
	}
	return m
}

// IsPermanent reports whether err, or an error it wraps, declares itself
// permanent. Permanent failures are never retried.
func IsPermanent(err error) bool {
	var p interface{ Permanent() bool }
	return errors.As(err, &p) && p.Permanent()
}

// PermanentError marks err as not worth retrying.
func PermanentError(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

type permanentError struct{ error }

func (e permanentError) Unwrap() error   { return e.error }
func (e permanentError) Permanent() bool { return true }
