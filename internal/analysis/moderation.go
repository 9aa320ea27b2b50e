package analysis

import "github.com/spacesedan/sentisocial/internal/models"

// Review thresholds. The admin moderation queue queries with the same values.
const (
	FlaggedSentimentLabel      = models.SentimentNegative
	FlaggedConfidenceThreshold = 0.8
	SarcasmConfidenceThreshold = 0.6
)

// NeedsReview flags strongly negative content, or negative content that is
// confidently sarcastic. Positive and neutral content is never flagged.
func NeedsReview(sentiment models.SentimentResult, sarcasm models.SarcasmResult) bool {
	if !sentiment.IsNegative {
		return false
	}
	if sentiment.Confidence > FlaggedConfidenceThreshold {
		return true
	}
	return sarcasm.IsSarcastic && sarcasm.Confidence > SarcasmConfidenceThreshold
}
