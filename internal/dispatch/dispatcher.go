package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/sentisocial/internal/models"
)

var (
	ErrQueueFull        = errors.New("analysis queue is full")
	ErrDispatcherClosed = errors.New("analysis dispatcher is shut down")
)

// Dispatcher schedules analyses off the request path. Submit never waits for the
// analysis itself; a rejected task leaves its row unanalyzed.
type Dispatcher interface {
	Submit(task models.AnalysisTask) error
	Shutdown(ctx context.Context) error
}

type Handler interface {
	Handle(ctx context.Context, task models.AnalysisTask) error
}

type HandlerFunc func(ctx context.Context, task models.AnalysisTask) error

func (f HandlerFunc) Handle(ctx context.Context, task models.AnalysisTask) error {
	return f(ctx, task)
}

func NewTask(kind models.ContentKind, contentID int64, content string) models.AnalysisTask {
	return models.AnalysisTask{
		TaskID:      uuid.NewString(),
		Kind:        kind,
		ContentID:   contentID,
		Content:     content,
		RequestedAt: time.Now().UTC(),
	}
}
