package analysis

import (
	"context"
	"strings"

	"github.com/spacesedan/sentisocial/internal/models"
	"golang.org/x/sync/errgroup"
)

// Analyzer is the process-wide moderation pipeline. Build it once at startup and
// share it; both classifiers and their caches are safe for concurrent use.
type Analyzer struct {
	sentiment *SentimentAnalyzer
	sarcasm   *SarcasmDetector
}

func NewAnalyzer(sentiment *SentimentAnalyzer, sarcasm *SarcasmDetector) *Analyzer {
	return &Analyzer{sentiment: sentiment, sarcasm: sarcasm}
}

// NewAnalyzerFromPredictors wires both adapters with caches of cacheSize entries each.
func NewAnalyzerFromPredictors(sentiment, sarcasm Predictor, cacheSize int) (*Analyzer, error) {
	sa, err := NewSentimentAnalyzer(sentiment, cacheSize)
	if err != nil {
		return nil, err
	}
	sd, err := NewSarcasmDetector(sarcasm, cacheSize)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(sa, sd), nil
}

func (a *Analyzer) Sentiment() *SentimentAnalyzer { return a.sentiment }

func (a *Analyzer) Sarcasm() *SarcasmDetector { return a.sarcasm }

// EmptyAnalysis is the result for empty or whitespace-only input.
func EmptyAnalysis() models.AnalysisResult {
	return models.AnalysisResult{
		Text: "",
		Sentiment: models.SentimentResult{
			SentimentLabel: models.SentimentNeutral,
			Confidence:     1.0,
			IsNeutral:      true,
		},
		Sarcasm:     models.SarcasmResult{IsSarcastic: false, Confidence: 1.0},
		NeedsReview: false,
	}
}

// AnalyzeTextComplete scores text for sentiment and sarcasm and decides whether it
// needs moderator review. It never fails: adapter errors are already absorbed into
// their fallback values.
func (a *Analyzer) AnalyzeTextComplete(ctx context.Context, text string) models.AnalysisResult {
	if strings.TrimSpace(text) == "" {
		return EmptyAnalysis()
	}

	var (
		sentiment models.SentimentResult
		sarcasm   models.SarcasmResult
		g         errgroup.Group
	)
	g.Go(func() error {
		sentiment = a.sentiment.Analyze(ctx, text)
		return nil
	})
	g.Go(func() error {
		sarcasm = a.sarcasm.Detect(ctx, text)
		return nil
	})
	_ = g.Wait()

	return models.AnalysisResult{
		Text:        text,
		Sentiment:   sentiment,
		Sarcasm:     sarcasm,
		NeedsReview: NeedsReview(sentiment, sarcasm),
	}
}
