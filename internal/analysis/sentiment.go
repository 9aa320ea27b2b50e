package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/spacesedan/sentisocial/internal/monitoring"
)

const sentimentModel = "sentiment"

// SentimentFallback is returned whenever inference fails.
func SentimentFallback() models.SentimentResult {
	return models.SentimentResult{
		SentimentLabel: models.SentimentNeutral,
		Confidence:     0.33,
		IsNeutral:      true,
	}
}

// SentimentAnalyzer classifies text polarity into positive, negative or neutral.
type SentimentAnalyzer struct {
	predictor Predictor
	cache     *InferenceCache[models.SentimentResult]
}

func NewSentimentAnalyzer(predictor Predictor, cacheSize int) (*SentimentAnalyzer, error) {
	cache, err := NewInferenceCache[models.SentimentResult](sentimentModel, cacheSize)
	if err != nil {
		return nil, err
	}
	return &SentimentAnalyzer{predictor: predictor, cache: cache}, nil
}

func (a *SentimentAnalyzer) Cache() *InferenceCache[models.SentimentResult] {
	return a.cache
}

// Analyze never fails; inference errors are logged and turned into SentimentFallback.
func (a *SentimentAnalyzer) Analyze(ctx context.Context, text string) models.SentimentResult {
	result, _, err := a.cache.GetOrCompute(ctx, text, func(ctx context.Context) (models.SentimentResult, error) {
		return a.infer(ctx, text)
	})
	if err != nil {
		slog.Error("[SentimentAnalyzer] Sentiment analysis failed",
			slog.String("error", err.Error()),
			slog.Int("text_length", len(text)))
		return SentimentFallback()
	}
	return result
}

func (a *SentimentAnalyzer) infer(ctx context.Context, text string) (result models.SentimentResult, err error) {
	start := time.Now()
	defer func() {
		monitoring.RecordInference(sentimentModel, time.Since(start).Seconds(), err != nil)
	}()
	defer recoverInference(&err)

	scores, err := a.predictor.Predict(ctx, NormalizeForSentiment(text))
	if err != nil {
		return result, err
	}

	ranked, err := rankScores(scores)
	if err != nil {
		return result, err
	}

	top := ranked[0]
	label := models.SentimentLabel(strings.ToLower(top.Label))
	switch label {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		return result, fmt.Errorf("unexpected sentiment label %q", top.Label)
	}

	return models.SentimentResult{
		SentimentLabel: label,
		Confidence:     roundConfidence(top.Score),
		IsPositive:     label == models.SentimentPositive,
		IsNegative:     label == models.SentimentNegative,
		IsNeutral:      label == models.SentimentNeutral,
	}, nil
}
