// Package kafka publishes submission events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fd1az/aptos-dex/business/swap/app"
	"github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

// Writer is the part of kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per event, keyed by transaction hash.
type Publisher struct {
	writer Writer
	topic  string
	log    logger.LoggerInterface
}

// New creates a publisher for brokers and topic.
func New(brokers []string, topic string, log logger.LoggerInterface) *Publisher {
	ctx := context.Background()
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: 1,
		Async:        false,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error(ctx, fmt.Sprintf("kafka writer: "+msg, args...))
		}),
	})
	return NewWithWriter(w, topic, log)
}

// NewWithWriter wraps an existing writer.
func NewWithWriter(w Writer, topic string, log logger.LoggerInterface) *Publisher {
	return &Publisher{writer: w, topic: topic, log: log}
}

// Publish implements app.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return apperror.New(apperror.CodeEventPublishFailed, apperror.WithCause(err))
	}

	msg := kafka.Message{
		Key:   []byte(ev.Hash),
		Value: value,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(ev.Action)},
			{Key: "network", Value: []byte(ev.Network)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return apperror.New(apperror.CodeEventPublishFailed,
			apperror.WithCause(err),
			apperror.WithContext(p.topic))
	}

	p.log.Debug(ctx, "submission event published", "topic", p.topic, "hash", ev.Hash, "status", ev.Status)
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements app.EventPublisher.
var _ app.EventPublisher = (*Publisher)(nil)
