package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/spacesedan/sentisocial/internal/models"
)

// recordingPredictor returns canned scores and remembers every input it saw.
type recordingPredictor struct {
	mu     sync.Mutex
	inputs []string
	scores []models.ClassScore
	err    error
	panic  bool
}

func (p *recordingPredictor) Predict(_ context.Context, text string) ([]models.ClassScore, error) {
	p.mu.Lock()
	p.inputs = append(p.inputs, text)
	p.mu.Unlock()
	if p.panic {
		panic("onnx session lost")
	}
	return p.scores, p.err
}

func (p *recordingPredictor) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inputs)
}

func sentimentScores(neg, neu, pos float64) []models.ClassScore {
	return []models.ClassScore{
		{Index: 0, Label: "negative", Score: neg},
		{Index: 1, Label: "neutral", Score: neu},
		{Index: 2, Label: "positive", Score: pos},
	}
}

func sarcasmScores(notSarcastic, sarcastic float64) []models.ClassScore {
	return []models.ClassScore{
		{Index: 0, Label: "LABEL_0", Score: notSarcastic},
		{Index: 1, Label: "LABEL_1", Score: sarcastic},
	}
}

// keywordSentiment stands in for the twitter sentiment model.
var keywordSentiment = PredictorFunc(func(_ context.Context, text string) ([]models.ClassScore, error) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "hate"), strings.Contains(lower, "terrible"):
		return sentimentScores(0.9412, 0.0451, 0.0137), nil
	case strings.Contains(lower, "love"):
		return sentimentScores(0.01, 0.04, 0.95), nil
	default:
		return sentimentScores(0.1, 0.8, 0.1), nil
	}
})

// keywordSarcasm stands in for the sarcasm model.
var keywordSarcasm = PredictorFunc(func(_ context.Context, text string) ([]models.ClassScore, error) {
	if strings.Contains(text, "oh great") {
		return sarcasmScores(0.2, 0.8), nil
	}
	return sarcasmScores(0.93, 0.07), nil
})
