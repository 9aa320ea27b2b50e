package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/spacesedan/sentisocial/internal/monitoring"
)

const (
	sarcasmModel = "sarcasm"

	// SarcasticClassIndex is the class id the sarcasm model uses for sarcastic text.
	SarcasticClassIndex = 1

	// MaxSequenceLength is the token budget sarcasm inputs are truncated to.
	MaxSequenceLength = 256
)

// SarcasmFallback is returned whenever inference fails.
func SarcasmFallback() models.SarcasmResult {
	return models.SarcasmResult{IsSarcastic: false, Confidence: 0.5}
}

// SarcasmDetector is a binary sarcasm classifier.
type SarcasmDetector struct {
	predictor Predictor
	cache     *InferenceCache[models.SarcasmResult]
}

func NewSarcasmDetector(predictor Predictor, cacheSize int) (*SarcasmDetector, error) {
	cache, err := NewInferenceCache[models.SarcasmResult](sarcasmModel, cacheSize)
	if err != nil {
		return nil, err
	}
	return &SarcasmDetector{predictor: predictor, cache: cache}, nil
}

func (d *SarcasmDetector) Cache() *InferenceCache[models.SarcasmResult] {
	return d.cache
}

// Detect never fails; inference errors are logged and turned into SarcasmFallback.
func (d *SarcasmDetector) Detect(ctx context.Context, text string) models.SarcasmResult {
	result, _, err := d.cache.GetOrCompute(ctx, text, func(ctx context.Context) (models.SarcasmResult, error) {
		return d.infer(ctx, text)
	})
	if err != nil {
		slog.Error("[SarcasmDetector] Sarcasm detection failed",
			slog.String("error", err.Error()),
			slog.Int("text_length", len(text)))
		return SarcasmFallback()
	}
	return result
}

func (d *SarcasmDetector) infer(ctx context.Context, text string) (result models.SarcasmResult, err error) {
	start := time.Now()
	defer func() {
		monitoring.RecordInference(sarcasmModel, time.Since(start).Seconds(), err != nil)
	}()
	defer recoverInference(&err)

	scores, err := d.predictor.Predict(ctx, NormalizeForSarcasm(text))
	if err != nil {
		return result, err
	}

	ranked, err := rankScores(scores)
	if err != nil {
		return result, err
	}

	top := ranked[0]
	return models.SarcasmResult{
		IsSarcastic: top.Index == SarcasticClassIndex,
		Confidence:  roundConfidence(top.Score),
	}, nil
}
