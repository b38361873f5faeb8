// Package events publishes the rating change feed to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"tutorhub/internal/config"
	"tutorhub/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// NewKafkaWriter builds a writer for the rating topic. Messages with the same
// key land on the same partition, so events about one rated user stay ordered.
// Each publish is flushed on its own instead of waiting for a batch to fill.
func NewKafkaWriter(cfg *config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.RatingTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}
}

func (p *KafkaPublisher) PublishRatingEvent(ctx context.Context, event *models.RatingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode rating event: %w", err)
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RatedUser.Hex()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish rating event: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.Writer.Close()
}
