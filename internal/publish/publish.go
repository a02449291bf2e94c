// Package publish sends processed items to a Kafka topic.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/canhta/CareCircle/pkg/carecircle"
	"github.com/canhta/CareCircle/pkg/carecircle/config"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
)

// Envelope is the JSON value of every message.
type Envelope struct {
	RunID string                   `json:"run_id"`
	Item  carecircle.ProcessedItem `json:"item"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes items keyed by content ID, so every version of an item
// lands on the same partition. It is a carecircle.Sink.
type Publisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// New creates a Publisher for cfg.Topic on cfg.Brokers.
func New(cfg config.KafkaConfig, logger zerolog.Logger) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("kafka brokers and topic are required: %w", internalerr.ErrInvalidConfig)
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return newPublisher(w, cfg.Topic, logger), nil
}

func newPublisher(w messageWriter, topic string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		writer: w,
		topic:  topic,
		logger: logger.With().Str("component", "kafka-publisher").Str("topic", topic).Logger(),
	}
}

// PutItems publishes all items in a single write call.
func (p *Publisher) PutItems(ctx context.Context, runID string, items []carecircle.ProcessedItem) error {
	if len(items) == 0 {
		return nil
	}

	msgs, err := Messages(runID, items)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error().Err(err).Int("count", len(msgs)).Msg("failed to publish batch")
		return fmt.Errorf("publishing to kafka: %w", errors.Join(internalerr.ErrStoreUnavailable, err))
	}
	p.logger.Debug().Str("run_id", runID).Int("count", len(msgs)).Msg("batch published")
	return nil
}

// Messages encodes items as Kafka messages.
func Messages(runID string, items []carecircle.ProcessedItem) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(items))
	for _, item := range items {
		value, err := json.Marshal(Envelope{RunID: runID, Item: item})
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", item.ContentID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(item.ContentID),
			Value: value,
			Headers: []kafka.Header{
				{Key: "run_id", Value: []byte(runID)},
				{Key: "specialty", Value: []byte(item.MedicalSpecialty)},
			},
		})
	}
	return msgs, nil
}

// Close flushes pending writes and closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ carecircle.Sink = (*Publisher)(nil)
