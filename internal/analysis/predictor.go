package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/spacesedan/sentisocial/internal/models"
)

// Predictor runs one pretrained sequence classifier over already normalized text
// and returns the softmax probability of every class.
type Predictor interface {
	Predict(ctx context.Context, text string) ([]models.ClassScore, error)
}

type PredictorFunc func(ctx context.Context, text string) ([]models.ClassScore, error)

func (f PredictorFunc) Predict(ctx context.Context, text string) ([]models.ClassScore, error) {
	return f(ctx, text)
}

var ErrEmptyPrediction = errors.New("classifier returned no classes")

// rankScores orders classes by descending probability. Ties keep class index order
// so the first maximum wins.
func rankScores(scores []models.ClassScore) ([]models.ClassScore, error) {
	if len(scores) == 0 {
		return nil, ErrEmptyPrediction
	}

	ranked := slices.Clone(scores)
	for _, s := range ranked {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			return nil, fmt.Errorf("classifier returned invalid score %v for %q", s.Score, s.Label)
		}
	}
	slices.SortStableFunc(ranked, func(a, b models.ClassScore) int {
		return a.Index - b.Index
	})
	slices.SortStableFunc(ranked, func(a, b models.ClassScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return ranked, nil
}

func roundConfidence(p float64) float64 {
	return math.Round(p*10000) / 10000
}

func recoverInference(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("inference panicked: %v", r)
	}
}
