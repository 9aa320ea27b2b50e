package models

import "time"

// AnalysisTask asks the pipeline to analyze one content row and patch its AI fields.
type AnalysisTask struct {
	TaskID      string      `json:"task_id"`
	Kind        ContentKind `json:"kind"`
	ContentID   int64       `json:"content_id"`
	Content     string      `json:"content"`
	RequestedAt time.Time   `json:"requested_at"`
}

// ArchivedAnalysis is the record kept in the analysis archive table.
type ArchivedAnalysis struct {
	ArchiveKey          string  `dynamodbav:"archive_key"`
	TaskID              string  `dynamodbav:"task_id"`
	Kind                string  `dynamodbav:"kind"`
	ContentID           int64   `dynamodbav:"content_id"`
	Text                string  `dynamodbav:"text,omitempty"`
	SentimentLabel      string  `dynamodbav:"sentiment_label"`
	SentimentConfidence float64 `dynamodbav:"sentiment_confidence"`
	IsSarcastic         bool    `dynamodbav:"is_sarcastic"`
	SarcasmConfidence   float64 `dynamodbav:"sarcasm_confidence"`
	NeedsReview         bool    `dynamodbav:"needs_review"`
	AnalyzedAt          int64   `dynamodbav:"analyzed_at"`
	TTL                 int64   `dynamodbav:"ttl"`
}
