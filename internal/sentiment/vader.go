package sentiment

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/sentisocial/internal/models"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
)

// VaderPredictor is a lexicon based stand-in for the sentiment model. The
// negative, neutral and positive proportions VADER reports sum to one and are
// used directly as the three class probabilities.
type VaderPredictor struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderPredictor() *VaderPredictor {
	return &VaderPredictor{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// RemoveLinks keeps the text of markdown links and drops their targets.
func RemoveLinks(input string) string {
	return markdownLinkPattern.ReplaceAllString(input, "$1")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	plain := htmlTagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

func (v *VaderPredictor) Predict(_ context.Context, text string) ([]models.ClassScore, error) {
	scores := v.analyzer.PolarityScores(ConvertMarkdownToText(text))

	neg, neu, pos := scores.Negative, scores.Neutral, scores.Positive
	if total := neg + neu + pos; total == 0 {
		neu = 1
	}

	return []models.ClassScore{
		{Index: 0, Label: string(models.SentimentNegative), Score: neg},
		{Index: 1, Label: string(models.SentimentNeutral), Score: neu},
		{Index: 2, Label: string(models.SentimentPositive), Score: pos},
	}, nil
}
