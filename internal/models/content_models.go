package models

import "time"

type ContentKind string

const (
	ContentKindPost    ContentKind = "post"
	ContentKindComment ContentKind = "comment"
)

func (k ContentKind) Valid() bool {
	return k == ContentKindPost || k == ContentKindComment
}

// AIFields are the columns written back by the analysis pipeline. All of them
// stay nil until the first analysis of the current content completes.
type AIFields struct {
	SentimentLabel      *string    `json:"sentiment_label"`
	SentimentConfidence *float64   `json:"sentiment_confidence"`
	IsSarcastic         *bool      `json:"is_sarcastic"`
	SarcasmConfidence   *float64   `json:"sarcasm_confidence"`
	AnalyzedAt          *time.Time `json:"analyzed_at"`
}

// Analyzed reports whether the row has been through a successful analysis.
func (f AIFields) Analyzed() bool {
	return f.SentimentLabel != nil && f.AnalyzedAt != nil
}

// AIFieldsFromResult maps an analysis onto the row columns.
func AIFieldsFromResult(result AnalysisResult, analyzedAt time.Time) AIFields {
	label := string(result.Sentiment.SentimentLabel)
	sentimentConfidence := result.Sentiment.Confidence
	sarcastic := result.Sarcasm.IsSarcastic
	sarcasmConfidence := result.Sarcasm.Confidence
	at := analyzedAt.UTC()

	return AIFields{
		SentimentLabel:      &label,
		SentimentConfidence: &sentimentConfidence,
		IsSarcastic:         &sarcastic,
		SarcasmConfidence:   &sarcasmConfidence,
		AnalyzedAt:          &at,
	}
}

type Post struct {
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	IsDeleted bool      `json:"-"`
	AIFields
}

type Comment struct {
	CommentID       int64     `json:"comment_id"`
	PostID          int64     `json:"post_id"`
	UserID          int64     `json:"user_id"`
	UserName        string    `json:"user_name"`
	Content         string    `json:"content"`
	ParentCommentID *int64    `json:"parent_comment_id"`
	CreatedAt       time.Time `json:"created_at"`
	AIFields
}

// ContentRow is the slice of a post or comment the analysis pipeline reads.
type ContentRow struct {
	Kind    ContentKind
	ID      int64
	Content string
}

type PostFilter struct {
	SentimentLabel   string
	IncludeSarcastic bool
	Skip             int
	Limit            int
}

type SentimentCount struct {
	Sentiment string `json:"sentiment"`
	Count     int64  `json:"count"`
}

type SarcasmStats struct {
	TotalAnalyzed     int64   `json:"total_analyzed"`
	SarcasticCount    int64   `json:"sarcastic_count"`
	SarcasmPercentage float64 `json:"sarcasm_percentage"`
}

type SentimentAnalytics struct {
	SentimentDistribution []SentimentCount `json:"sentiment_distribution"`
	SarcasmStats          SarcasmStats     `json:"sarcasm_stats"`
}

type AdminStats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalPosts         int64 `json:"total_posts"`
	TotalComments      int64 `json:"total_comments"`
	PostsNeedingReview int64 `json:"posts_needing_review"`
}
