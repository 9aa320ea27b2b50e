package consumers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentisocial/internal/db"
	"github.com/spacesedan/sentisocial/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	rows    map[models.ContentKind]map[int64]string
	fields  map[int64]models.AIFields
	getErr  error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows: map[models.ContentKind]map[int64]string{
			models.ContentKindPost:    {},
			models.ContentKindComment: {},
		},
		fields: map[int64]models.AIFields{},
	}
}

func (s *fakeStore) put(kind models.ContentKind, id int64, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[kind][id] = content
}

func (s *fakeStore) GetContent(_ context.Context, kind models.ContentKind, id int64) (models.ContentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return models.ContentRow{}, s.getErr
	}
	content, ok := s.rows[kind][id]
	if !ok {
		return models.ContentRow{}, db.ErrNotFound
	}
	return models.ContentRow{Kind: kind, ID: id, Content: content}, nil
}

func (s *fakeStore) UpdateAIFields(_ context.Context, kind models.ContentKind, id int64, analyzedText string, fields models.AIFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if content, ok := s.rows[kind][id]; !ok || content != analyzedText {
		return db.ErrNotFound
	}
	s.fields[id] = fields
	return nil
}

func (s *fakeStore) fieldsFor(id int64) (models.AIFields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fields[id]
	return f, ok
}

// fakeAnalyzer flags any text containing "awful" as confidently negative.
type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []string
	hook  func(text string)
}

func (a *fakeAnalyzer) AnalyzeTextComplete(_ context.Context, text string) models.AnalysisResult {
	a.mu.Lock()
	a.calls = append(a.calls, text)
	hook := a.hook
	a.mu.Unlock()
	if hook != nil {
		hook(text)
	}

	result := models.AnalysisResult{
		Text:      text,
		Sentiment: models.SentimentResult{SentimentLabel: models.SentimentPositive, Confidence: 0.9, IsPositive: true},
		Sarcasm:   models.SarcasmResult{IsSarcastic: false, Confidence: 0.8},
	}
	if text == "this is awful" {
		result.Sentiment = models.SentimentResult{SentimentLabel: models.SentimentNegative, Confidence: 0.95, IsNegative: true}
		result.NeedsReview = true
	}
	return result
}

func (a *fakeAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

type fakeArchive struct {
	mu      sync.Mutex
	records []models.AnalysisTask
}

func (a *fakeArchive) Record(_ context.Context, task models.AnalysisTask, _ models.AnalysisResult, _ time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, task)
}

type fakeDeduper struct {
	mu        sync.Mutex
	processed map[string]bool
}

func (d *fakeDeduper) key(task models.AnalysisTask) string {
	return string(task.Kind) + task.Content
}

func (d *fakeDeduper) IsProcessed(_ context.Context, task models.AnalysisTask) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.processed[d.key(task)]
}

func (d *fakeDeduper) MarkProcessed(_ context.Context, task models.AnalysisTask) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.processed[d.key(task)] = true
	return nil
}

// fakeSource serves queued messages, then cancels the consumer context.
type fakeSource struct {
	mu        sync.Mutex
	messages  []*kafka.Message
	committed []kafka.Offset
	cancel    context.CancelFunc
}

func (s *fakeSource) ReadMessage(time.Duration) (*kafka.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		s.cancel()
		return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	}
	msg := s.messages[0]
	s.messages = s.messages[1:]
	return msg, nil
}

func (s *fakeSource) CommitMessage(msg *kafka.Message) ([]kafka.TopicPartition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, msg.TopicPartition.Offset)
	return []kafka.TopicPartition{msg.TopicPartition}, nil
}

func taskMessage(offset int64, task models.AnalysisTask) *kafka.Message {
	value, _ := json.Marshal(task)
	topic := "content-analysis-request"
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Offset: kafka.Offset(offset)},
		Value:          value,
	}
}
