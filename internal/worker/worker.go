// Package worker consumes the change-event stream and invalidates cached
// lists, so replicas that did not serve a mutation still converge.
package worker

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/models"
	"taskdeck/pkg/logger"
)

// Run starts the Kafka consumer loop. Blocks until ctx is cancelled. With no
// brokers configured it returns immediately.
func Run(ctx context.Context, cfg *config.Config, c *cache.Cache) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  "taskdeck-invalidators",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", cfg.KafkaTopic)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := handleMessage(ctx, c, msg.Value); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid a poison pill blocking the partition
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}

func handleMessage(ctx context.Context, c *cache.Cache, payload []byte) error {
	var ev models.ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	switch ev.Entity {
	case "project":
		c.InvalidateProjects(ctx, ev.UserID)
		if ev.Action == "delete" {
			// Cascade removed the project's todos as well
			c.InvalidateTodos(ctx, ev.UserID, ev.ID)
		}
	case "todo":
		c.InvalidateTodos(ctx, ev.UserID, ev.ProjectID)
	}
	return nil
}
