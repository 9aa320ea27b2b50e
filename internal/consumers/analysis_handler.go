package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/sentisocial/internal/db"
	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/spacesedan/sentisocial/internal/monitoring"
)

type ContentStore interface {
	GetContent(ctx context.Context, kind models.ContentKind, id int64) (models.ContentRow, error)
	UpdateAIFields(ctx context.Context, kind models.ContentKind, id int64, analyzedText string, fields models.AIFields) error
}

type TextAnalyzer interface {
	AnalyzeTextComplete(ctx context.Context, text string) models.AnalysisResult
}

type Archiver interface {
	Record(ctx context.Context, task models.AnalysisTask, result models.AnalysisResult, analyzedAt time.Time)
}

// AnalysisHandler runs one analysis task end to end: it analyzes the submitted
// text and patches the row's AI fields, provided the row still holds that text.
type AnalysisHandler struct {
	store    ContentStore
	analyzer TextAnalyzer
	archive  Archiver
	now      func() time.Time
}

func NewAnalysisHandler(store ContentStore, analyzer TextAnalyzer) *AnalysisHandler {
	return &AnalysisHandler{
		store:    store,
		analyzer: analyzer,
		now:      time.Now,
	}
}

func (h *AnalysisHandler) WithArchive(archive Archiver) *AnalysisHandler {
	h.archive = archive
	return h
}

func (h *AnalysisHandler) Handle(ctx context.Context, task models.AnalysisTask) error {
	kind := string(task.Kind)
	logger := slog.With(
		slog.String("task_id", task.TaskID),
		slog.String("kind", kind),
		slog.Int64("content_id", task.ContentID))

	row, err := h.store.GetContent(ctx, task.Kind, task.ContentID)
	if errors.Is(err, db.ErrNotFound) {
		logger.Info("[AnalysisHandler] Content no longer exists, dropping analysis")
		monitoring.RecordTask(kind, "dropped")
		return nil
	}
	if err != nil {
		logger.Error("[AnalysisHandler] Failed to load content", slog.String("error", err.Error()))
		monitoring.RecordTask(kind, "failed")
		return err
	}
	if row.Content != task.Content {
		logger.Info("[AnalysisHandler] Content was edited after submission, skipping stale analysis")
		monitoring.RecordTask(kind, "stale")
		return nil
	}

	result := h.analyzer.AnalyzeTextComplete(ctx, task.Content)
	analyzedAt := h.now().UTC()

	err = h.store.UpdateAIFields(ctx, task.Kind, task.ContentID, task.Content, models.AIFieldsFromResult(result, analyzedAt))
	if errors.Is(err, db.ErrNotFound) {
		logger.Info("[AnalysisHandler] Content changed during analysis, discarding result")
		monitoring.RecordTask(kind, "stale")
		return nil
	}
	if err != nil {
		logger.Error("[AnalysisHandler] Failed to write analysis back", slog.String("error", err.Error()))
		monitoring.RecordTask(kind, "failed")
		return err
	}

	if h.archive != nil {
		h.archive.Record(ctx, task, result, analyzedAt)
	}

	monitoring.RecordTask(kind, "analyzed")
	logger.Info("[AnalysisHandler] Analysis stored",
		slog.String("sentiment", string(result.Sentiment.SentimentLabel)),
		slog.Bool("is_sarcastic", result.Sarcasm.IsSarcastic),
		slog.Bool("needs_review", result.NeedsReview))
	return nil
}
