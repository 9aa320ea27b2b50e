package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/spacesedan/sentisocial/internal/monitoring"
)

// LocalDispatcher runs analyses on a fixed pool of in-process workers fed by a
// bounded queue.
type LocalDispatcher struct {
	handler Handler
	queue   chan models.AnalysisTask
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewLocalDispatcher(handler Handler, workers, queueSize int) *LocalDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &LocalDispatcher{
		handler: handler,
		queue:   make(chan models.AnalysisTask, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	slog.Info("[LocalDispatcher] Started",
		slog.Int("workers", workers),
		slog.Int("queue_size", queueSize))
	return d
}

func (d *LocalDispatcher) Submit(task models.AnalysisTask) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- task:
		monitoring.DispatchQueueDepth.Inc()
		return nil
	default:
		monitoring.RecordTask(string(task.Kind), "rejected")
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. When ctx
// ends first, in-flight analyses are cancelled and ctx.Err() is returned.
func (d *LocalDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		slog.Info("[LocalDispatcher] Drained analysis queue")
		return nil
	case <-ctx.Done():
		d.cancel()
		slog.Warn("[LocalDispatcher] Shutdown deadline reached, abandoning queued analyses",
			slog.Int("remaining", len(d.queue)))
		return ctx.Err()
	}
}

func (d *LocalDispatcher) worker(id int) {
	defer d.wg.Done()
	for task := range d.queue {
		monitoring.DispatchQueueDepth.Dec()
		if d.ctx.Err() != nil {
			continue
		}
		if err := d.run(task); err != nil {
			slog.Error("[LocalDispatcher] Analysis task failed",
				slog.Int("worker", id),
				slog.String("task_id", task.TaskID),
				slog.String("kind", string(task.Kind)),
				slog.Int64("content_id", task.ContentID),
				slog.String("error", err.Error()))
		}
	}
}

func (d *LocalDispatcher) run(task models.AnalysisTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis task panicked: %v", r)
		}
	}()
	return d.handler.Handle(d.ctx, task)
}
