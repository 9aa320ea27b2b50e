package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemotePredictorNestedResponse(t *testing.T) {
	var got models.TextClassificationRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/org/sentiment", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"Negative","score":0.7},{"label":"neutral","score":0.2},{"label":"POSITIVE","score":0.1}]]`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(context.Background(), server.URL, "secret", 2*time.Second)
	predictor := NewRemotePredictor(client, "org/sentiment", []string{"negative", "neutral", "positive"}, 0)

	scores, err := predictor.Predict(context.Background(), "hello @user")
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, models.ClassScore{Index: 0, Label: "negative", Score: 0.7}, scores[0])
	assert.Equal(t, models.ClassScore{Index: 2, Label: "positive", Score: 0.1}, scores[2])
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "hello @user", got.Inputs)
	assert.Equal(t, "softmax", got.Parameters.FunctionToApply)
	assert.Equal(t, 3, got.Parameters.TopK)
	assert.False(t, got.Parameters.Truncation)
}

func TestRemotePredictorFlatResponseWithGenericLabels(t *testing.T) {
	var got models.TextClassificationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"label":"LABEL_1","score":0.9},{"label":"LABEL_0","score":0.1}]`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(context.Background(), server.URL, "", 2*time.Second)
	predictor := NewRemotePredictor(client, "sarcasm", []string{"not_sarcastic", "sarcastic"}, 256)

	scores, err := predictor.Predict(context.Background(), "oh great")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 1, scores[0].Index)
	assert.Equal(t, "sarcastic", scores[0].Label)
	assert.True(t, got.Parameters.Truncation)
	assert.True(t, got.Parameters.Padding)
	assert.Equal(t, 256, got.Parameters.MaxLength)
}

func TestRemotePredictorUnknownLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"joy","score":1.0}]]`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(context.Background(), server.URL, "", time.Second)
	predictor := NewRemotePredictor(client, "m", []string{"negative", "neutral", "positive"}, 0)

	_, err := predictor.Predict(context.Background(), "text")
	assert.Error(t, err)
}

func TestClassifyRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"neutral","score":1.0}]]`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(context.Background(), server.URL, "", time.Second)
	labels, err := client.Classify(context.Background(), "m", models.TextClassificationRequest{Inputs: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []models.TextClassificationLabel{{Label: "neutral", Score: 1.0}}, labels)
}

func TestClassifyClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(context.Background(), server.URL, "", time.Second)
	_, err := client.Classify(context.Background(), "m", models.TextClassificationRequest{Inputs: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestResolveLabel(t *testing.T) {
	labels := []string{"negative", "neutral", "positive"}

	idx, label, err := resolveLabel(labels, "Positive")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "positive", label)

	idx, label, err = resolveLabel(labels, "label_1")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "neutral", label)

	idx, label, err = resolveLabel(labels, "LABEL_7")
	require.NoError(t, err)
	assert.Equal(t, 7, idx)
	assert.Equal(t, "LABEL_7", label)

	_, _, err = resolveLabel(labels, "happy")
	assert.Error(t, err)
}
