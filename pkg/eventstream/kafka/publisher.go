// Package kafka publishes example events to a Kafka topic.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/ndbprep/pkg/eventstream"
)

// Config configures the Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string

	// WriteTimeout bounds a single Publish call. Zero uses the writer default.
	WriteTimeout time.Duration
}

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes events as JSON messages keyed by run id. The hash
// balancer keeps every message of a run on one partition, in sequence order.
type Publisher struct {
	writer messageWriter
	topic  string
}

// NewPublisher creates a Kafka publisher. Brokers and topic are required.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher needs at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka publisher needs a topic")
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	if cfg.WriteTimeout > 0 {
		w.WriteTimeout = cfg.WriteTimeout
	}

	return newPublisher(w, cfg.Topic), nil
}

func newPublisher(w messageWriter, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic}
}

// Publish writes events in a single batch.
func (p *Publisher) Publish(ctx context.Context, events []*eventstream.ExampleEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(events))
	for _, event := range events {
		msg, err := toMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("writing %d messages to %s: %w", len(msgs), p.topic, err)
	}
	return nil
}

// Close flushes pending writes and releases the connection.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toMessage(event *eventstream.ExampleEvent) (kafkago.Message, error) {
	if event == nil {
		return kafkago.Message{}, eventstream.ErrNilExampleEvent
	}

	var value bytes.Buffer
	enc := json.NewEncoder(&value)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		return kafkago.Message{}, fmt.Errorf("encoding event %s: %w", event.EventID, err)
	}

	return kafkago.Message{
		Key:   []byte(event.RunID),
		Value: bytes.TrimSuffix(value.Bytes(), []byte("\n")),
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}, nil
}
