package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentisocial/config"
)

func NewConsumer(cfg config.KafkaConfig) (*kafka.Consumer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Consumer...",
		slog.String("broker", cfg.Broker),
		slog.String("group_id", cfg.GroupID),
		slog.String("topic", cfg.Topic))

	c, err := kafka.NewConsumer(ConsumerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create consumer: %w", err)
	}

	if err := c.SubscribeTopics([]string{cfg.Topic}, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to subscribe to topic %s: %w", cfg.Topic, err)
	}

	slog.Info("[KafkaClient] Kafka Consumer initialized successfully")
	return c, nil
}

// RunConsumer subscribes a consumer to cfg.Topic and hands it to run until run
// returns. The consumer is closed afterwards.
func RunConsumer(ctx context.Context, cfg config.KafkaConfig, run func(context.Context, *kafka.Consumer) error) error {
	consumer, err := NewConsumer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			slog.Warn("[KafkaClient] Failed to close consumer", slog.String("error", err.Error()))
		}
	}()

	slog.Info("[KafkaClient] Starting consumer for topic...", slog.String("topic", cfg.Topic))
	return run(ctx, consumer)
}
