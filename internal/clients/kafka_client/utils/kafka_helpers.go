package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func SerializeToJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("[KafkaUtils] Failed to serialize JSON",
			slog.String("error", err.Error()))
		return nil, err
	}
	return data, nil
}

// DecodeMessage unmarshals a JSON message value into T.
func DecodeMessage[T any](msg *kafka.Message) (T, error) {
	var v T
	if msg == nil {
		return v, fmt.Errorf("[KafkaUtils] nil message")
	}
	if err := json.Unmarshal(msg.Value, &v); err != nil {
		slog.Warn("[KafkaUtils] Failed to deserialize JSON",
			slog.String("error", err.Error()),
			slog.Int("partition", int(msg.TopicPartition.Partition)),
			slog.String("offset", msg.TopicPartition.Offset.String()))
		return v, err
	}
	return v, nil
}
