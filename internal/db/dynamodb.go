package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/spacesedan/sentisocial/internal/utils"
)

const (
	// DynamoDB rejects batch writes of more than 25 items.
	ARCHIVE_MAX_BATCH   = 25
	ARCHIVE_MAX_RETRIES = 3
	ARCHIVE_TTL         = 30 * 24 * time.Hour
)

type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// AnalysisArchive keeps a history of completed analyses in DynamoDB. Records are
// buffered and written in batches; failures are logged and never surface to the
// write-back path.
type AnalysisArchive struct {
	client        BatchWriter
	table         string
	buffer        *utils.BatchBuffer[models.ArchivedAnalysis]
	flushInterval time.Duration
	backoff       time.Duration
}

func NewAnalysisArchive(client BatchWriter, table string) *AnalysisArchive {
	return &AnalysisArchive{
		client:        client,
		table:         table,
		buffer:        utils.NewBatchBuffer[models.ArchivedAnalysis](ARCHIVE_MAX_BATCH),
		flushInterval: utils.BATCH_TIMEOUT,
		backoff:       500 * time.Millisecond,
	}
}

func ArchiveRecord(task models.AnalysisTask, result models.AnalysisResult, analyzedAt time.Time) models.ArchivedAnalysis {
	return models.ArchivedAnalysis{
		ArchiveKey:          fmt.Sprintf("%s#%d#%s", task.Kind, task.ContentID, task.TaskID),
		TaskID:              task.TaskID,
		Kind:                string(task.Kind),
		ContentID:           task.ContentID,
		Text:                result.Text,
		SentimentLabel:      string(result.Sentiment.SentimentLabel),
		SentimentConfidence: result.Sentiment.Confidence,
		IsSarcastic:         result.Sarcasm.IsSarcastic,
		SarcasmConfidence:   result.Sarcasm.Confidence,
		NeedsReview:         result.NeedsReview,
		AnalyzedAt:          analyzedAt.Unix(),
		TTL:                 analyzedAt.Add(ARCHIVE_TTL).Unix(),
	}
}

// Record buffers one analysis, writing the batch once it is full.
func (a *AnalysisArchive) Record(ctx context.Context, task models.AnalysisTask, result models.AnalysisResult, analyzedAt time.Time) {
	if full := a.buffer.Add(ArchiveRecord(task, result, analyzedAt)); full {
		if err := a.Flush(ctx); err != nil {
			slog.Error("[DynamoDB] Failed to archive analyses", slog.String("error", err.Error()))
		}
	}
}

// Run flushes the buffer every flush interval until ctx ends, then once more.
func (a *AnalysisArchive) Run(ctx context.Context) {
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := a.Flush(flushCtx); err != nil {
				slog.Error("[DynamoDB] Final archive flush failed", slog.String("error", err.Error()))
			}
			cancel()
			return
		case <-ticker.C:
			if err := a.Flush(ctx); err != nil {
				slog.Error("[DynamoDB] Failed to archive analyses", slog.String("error", err.Error()))
			}
		}
	}
}

func (a *AnalysisArchive) Flush(ctx context.Context) error {
	records := a.buffer.GetAndClear()
	if len(records) == 0 {
		return nil
	}

	var errs []error
	for _, chunk := range utils.Chunk(records, ARCHIVE_MAX_BATCH) {
		if err := a.writeBatch(ctx, chunk); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	slog.Info("[DynamoDB] Archived analyses", slog.Int("count", len(records)))
	return nil
}

func (a *AnalysisArchive) writeBatch(ctx context.Context, records []models.ArchivedAnalysis) error {
	writeRequests := make([]types.WriteRequest, 0, len(records))
	for _, record := range records {
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("[DynamoDB] failed to marshal archive record %s: %w", record.ArchiveKey, err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	out, err := a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{a.table: writeRequests},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to batch write analyses: %w", err)
	}

	backoff := a.backoff
	for retry := 0; len(out.UnprocessedItems) > 0 && retry < ARCHIVE_MAX_RETRIES; retry++ {
		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.Int("attempt", retry+1),
			slog.Int("remaining", len(out.UnprocessedItems[a.table])))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		out, err = a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] failed to retry batch write: %w", err)
		}
	}

	if remaining := len(out.UnprocessedItems[a.table]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d archive records were not written after retries", remaining)
	}
	return nil
}
