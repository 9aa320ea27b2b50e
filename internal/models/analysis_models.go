package models

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// ClassScore is one class of a classifier output. Score is a probability.
type ClassScore struct {
	Index int     `json:"index"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type SentimentResult struct {
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	Confidence     float64        `json:"confidence"`
	IsPositive     bool           `json:"is_positive"`
	IsNegative     bool           `json:"is_negative"`
	IsNeutral      bool           `json:"is_neutral"`
}

type SarcasmResult struct {
	IsSarcastic bool    `json:"is_sarcastic"`
	Confidence  float64 `json:"confidence"`
}

// AnalysisResult is the unified output of the moderation pipeline for one text.
type AnalysisResult struct {
	Text        string          `json:"text"`
	Sentiment   SentimentResult `json:"sentiment"`
	Sarcasm     SarcasmResult   `json:"sarcasm"`
	NeedsReview bool            `json:"needs_review"`
}
