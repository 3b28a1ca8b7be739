package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"taskdeck/internal/config"
	"taskdeck/internal/models"
	"taskdeck/pkg/logger"
)

// Publisher emits change events to Kafka after successful mutations. With no
// brokers configured it is a no-op; a single replica invalidates its own
// cache inline and needs no event stream.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds the Kafka producer. Messages are keyed by user id so
// one user's changes stay ordered within a partition.
func NewPublisher(ctx context.Context, cfg *config.Config) *Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Events disabled (no Kafka brokers)")
		return &Publisher{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	logger.Info(ctx, "Kafka producer initialized", "topic", cfg.KafkaTopic)
	return &Publisher{writer: w}
}

// Publish sends a change event. Failures are logged and swallowed; the event
// stream is an optimization, never part of the request contract.
func (p *Publisher) Publish(ctx context.Context, ev models.ChangeEvent) {
	if p.writer == nil {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Error(ctx, "Marshal change event failed", "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: b,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Warn(ctx, "Publish change event failed", "error", err, "entity", ev.Entity, "action", ev.Action)
	}
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// EnsureTopic creates the change topic with configured partitions
// (idempotent). Call at startup; if it fails the app still runs.
func EnsureTopic(ctx context.Context, cfg *config.Config) {
	if len(cfg.KafkaBrokers) == 0 {
		return
	}
	conn, err := kafka.Dial("tcp", cfg.KafkaBrokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.KafkaTopic,
		NumPartitions:     cfg.KafkaPartitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka topic creation failed", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ready", "topic", cfg.KafkaTopic, "partitions", cfg.KafkaPartitions)
}
