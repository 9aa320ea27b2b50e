package consumers

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentisocial/internal/clients/kafka_client"
)

// MessageSource is what a consumer loop reads from and commits to. A
// *kafka.Consumer satisfies it.
type MessageSource interface {
	kafka_client.MessageReader
	kafka_client.OffsetCommitter
}

type ConsumerFunc func(ctx context.Context, source MessageSource, health ...*atomic.Bool) error

type ConsumerWrapper struct {
	fn     ConsumerFunc
	health []*atomic.Bool
}

func WrapConsumer(fn ConsumerFunc, health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		fn:     fn,
		health: health,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(slices.Clone(cw.health), health)
	return cw
}

// Handler adapts the wrapped loop to kafka_client.RunConsumer.
func (cw ConsumerWrapper) Handler() func(ctx context.Context, consumer *kafka.Consumer) error {
	return func(ctx context.Context, consumer *kafka.Consumer) error {
		return cw.fn(ctx, consumer, cw.health...)
	}
}

func allHealthy(health []*atomic.Bool) bool {
	for _, h := range health {
		if h != nil && !h.Load() {
			return false
		}
	}
	return true
}
