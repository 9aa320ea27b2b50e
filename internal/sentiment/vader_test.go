package sentiment

import (
	"context"
	"testing"

	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMarkdownToText(t *testing.T) {
	got := ConvertMarkdownToText("**Great** read, see [the post](https://example.com/p)")
	assert.Equal(t, "Great read, see the post", got)
}

func TestVaderPredictor_ClassOrder(t *testing.T) {
	p := NewVaderPredictor()

	scores, err := p.Predict(context.Background(), "I hate this, it is terrible and awful")
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, string(models.SentimentNegative), scores[0].Label)
	assert.Equal(t, string(models.SentimentNeutral), scores[1].Label)
	assert.Equal(t, string(models.SentimentPositive), scores[2].Label)
	assert.Greater(t, scores[0].Score, scores[2].Score)
	assert.InDelta(t, 1.0, scores[0].Score+scores[1].Score+scores[2].Score, 0.01)
}

func TestVaderPredictor_EmptyTextIsNeutral(t *testing.T) {
	p := NewVaderPredictor()

	scores, err := p.Predict(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, scores[1].Score)
}
