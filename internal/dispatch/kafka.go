package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentisocial/internal/clients/kafka_client/utils"
	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/spacesedan/sentisocial/internal/monitoring"
)

type Publisher interface {
	Enqueue(topic string, key, value []byte, delivery chan kafka.Event) error
}

// KafkaDispatcher hands tasks to the analyzer binary through a Kafka topic.
// Delivery failures are logged from the report loop.
type KafkaDispatcher struct {
	publisher Publisher
	topic     string
	delivery  chan kafka.Event
	pending   sync.WaitGroup
	done      chan struct{}
	stopOnce  sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewKafkaDispatcher(publisher Publisher, topic string) *KafkaDispatcher {
	d := &KafkaDispatcher{
		publisher: publisher,
		topic:     topic,
		delivery:  make(chan kafka.Event, 256),
		done:      make(chan struct{}),
	}
	go d.reportLoop()
	return d
}

func TaskKey(task models.AnalysisTask) []byte {
	return []byte(fmt.Sprintf("%s:%d", task.Kind, task.ContentID))
}

func (d *KafkaDispatcher) Submit(task models.AnalysisTask) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	value, err := utils.SerializeToJSON(task)
	if err != nil {
		return err
	}

	d.pending.Add(1)
	if err := d.publisher.Enqueue(d.topic, TaskKey(task), value, d.delivery); err != nil {
		d.pending.Done()
		monitoring.RecordTask(string(task.Kind), "rejected")
		return err
	}
	return nil
}

func (d *KafkaDispatcher) reportLoop() {
	for {
		select {
		case <-d.done:
			return
		case ev := <-d.delivery:
			d.report(ev)
		}
	}
}

func (d *KafkaDispatcher) report(ev kafka.Event) {
	msg, ok := ev.(*kafka.Message)
	if !ok {
		slog.Warn("[KafkaDispatcher] Unexpected delivery event", slog.String("event", fmt.Sprint(ev)))
		return
	}
	defer d.pending.Done()

	if msg.TopicPartition.Error != nil {
		slog.Error("[KafkaDispatcher] Failed to deliver analysis task",
			slog.String("key", string(msg.Key)),
			slog.String("error", msg.TopicPartition.Error.Error()))
		return
	}
	slog.Debug("[KafkaDispatcher] Delivered analysis task", slog.String("key", string(msg.Key)))
}

// Shutdown stops accepting tasks and waits for outstanding delivery reports.
func (d *KafkaDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(waited)
	}()

	var err error
	select {
	case <-waited:
	case <-ctx.Done():
		err = ctx.Err()
	}
	d.stopOnce.Do(func() { close(d.done) })
	return err
}
