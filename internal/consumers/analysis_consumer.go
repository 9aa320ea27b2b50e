package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentisocial/internal/clients/kafka_client"
	"github.com/spacesedan/sentisocial/internal/clients/kafka_client/utils"
	"github.com/spacesedan/sentisocial/internal/dispatch"
	"github.com/spacesedan/sentisocial/internal/models"
)

const UNHEALTHY_PAUSE = 5 * time.Second

type Deduper interface {
	IsProcessed(ctx context.Context, task models.AnalysisTask) bool
	MarkProcessed(ctx context.Context, task models.AnalysisTask) error
}

type AnalysisConsumer struct {
	handler dispatch.Handler
	dedupe  Deduper
	pause   time.Duration
}

// NewAnalysisConsumer builds the consumer loop for analysis tasks. dedupe may be nil.
func NewAnalysisConsumer(handler dispatch.Handler, dedupe Deduper) *AnalysisConsumer {
	return &AnalysisConsumer{handler: handler, dedupe: dedupe, pause: UNHEALTHY_PAUSE}
}

// StartAnalysisConsumer reads analysis tasks until ctx ends. Every message is
// committed once handled, whether or not the analysis succeeded; failed
// analyses are not retried. Reading pauses while any health flag is false.
func (c *AnalysisConsumer) StartAnalysisConsumer(ctx context.Context, source MessageSource, health ...*atomic.Bool) error {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, source)
	committer := kafka_client.NewCommitHandler(ctx, source)

	paused := false
	for {
		if ctx.Err() != nil {
			slog.Warn("[AnalysisConsumer] Consumer shutting down...")
			return nil
		}

		if !allHealthy(health) {
			if !paused {
				slog.Warn("[AnalysisConsumer] Inference backend unhealthy, pausing consumption")
				paused = true
			}
			select {
			case <-ctx.Done():
			case <-time.After(c.pause):
			}
			continue
		}
		if paused {
			slog.Info("[AnalysisConsumer] Inference backend healthy, resuming consumption")
			paused = false
		}

		msg, err := iterator.Next()
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("[AnalysisConsumer] Kafka Consumer Error", slog.String("error", err.Error()))
			}
			select {
			case <-ctx.Done():
			case <-time.After(c.pause):
			}
			continue
		}

		task, err := utils.DecodeMessage[models.AnalysisTask](msg)
		if err != nil || !task.Kind.Valid() {
			slog.Error("[AnalysisConsumer] Dropping malformed analysis task",
				slog.String("key", string(msg.Key)))
			c.commit(committer, msg)
			continue
		}

		c.process(ctx, task)
		c.commit(committer, msg)
	}
}

func (c *AnalysisConsumer) process(ctx context.Context, task models.AnalysisTask) {
	if c.dedupe != nil && c.dedupe.IsProcessed(ctx, task) {
		slog.Info("[AnalysisConsumer] Skipping already processed task",
			slog.String("task_id", task.TaskID),
			slog.String("kind", string(task.Kind)),
			slog.Int64("content_id", task.ContentID))
		return
	}

	if err := c.handler.Handle(ctx, task); err != nil {
		return
	}

	if c.dedupe != nil {
		if err := c.dedupe.MarkProcessed(ctx, task); err != nil {
			slog.Warn("[AnalysisConsumer] Failed to mark task processed",
				slog.String("task_id", task.TaskID),
				slog.String("error", err.Error()))
		}
	}
}

func (c *AnalysisConsumer) commit(committer *kafka_client.KafkaCommitHandler, msg *kafka.Message) {
	if err := committer.Commit(msg); err != nil {
		slog.Warn("[AnalysisConsumer] Failed to commit offset",
			slog.String("error", err.Error()))
	}
}
