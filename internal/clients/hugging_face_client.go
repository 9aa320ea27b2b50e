package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/sentisocial/internal/models"
	"golang.org/x/oauth2"
)

const HF_INFERENCE_ENDPOINT = "https://api-inference.huggingface.co"

// HuggingFaceClient talks to a hosted text-classification inference endpoint.
type HuggingFaceClient struct {
	Client  *http.Client
	BaseURL string
}

func NewHuggingFaceClient(ctx context.Context, baseURL, token string, timeout time.Duration) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = HF_INFERENCE_ENDPOINT
	}

	client := &http.Client{Timeout: timeout}
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		client.Timeout = timeout
	}

	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("base_url", baseURL),
		slog.Duration("timeout", timeout),
		slog.Bool("authenticated", token != ""))

	return &HuggingFaceClient{
		Client:  client,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (h *HuggingFaceClient) DoWithRetry(req *http.Request, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := INITIAL_BACKOFF

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.ContentLength = int64(len(body))
		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	if err == nil {
		err = fmt.Errorf("inference endpoint unavailable: %s", errMsg(nil, resp))
	}
	return nil, err
}

// Classify runs a text-classification model and returns every class it reports.
func (h *HuggingFaceClient) Classify(ctx context.Context, model string, input models.TextClassificationRequest) ([]models.TextClassificationLabel, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/models/%s", h.BaseURL, model)

	var raw json.RawMessage
	if err := h.postJSON(ctx, endpoint, input, &raw); err != nil {
		slog.Error("[HuggingFaceClient] Classification request failed",
			slog.String("model", model),
			slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	labels, err := decodeClassification(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode classification for %s: %w", model, err)
	}

	slog.Debug("[HuggingFaceClient] Classification request successful",
		slog.String("model", model),
		slog.Duration("elapsed", time.Since(start)))
	return labels, nil
}

// HealthCheck reports whether the inference endpoint answers at all.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// the endpoint answers either [[{label, score}, ...]] or [{label, score}, ...]
func decodeClassification(raw json.RawMessage) ([]models.TextClassificationLabel, error) {
	var nested [][]models.TextClassificationLabel
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []models.TextClassificationLabel
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func (h *HuggingFaceClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to build request",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.DoWithRetry(req, body)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("inference endpoint returned status %d: %s", resp.StatusCode, preview(respBody))
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			slog.String("raw_response", preview(respBody)),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// RemotePredictor adapts one hosted model to the classifier port.
type RemotePredictor struct {
	client *HuggingFaceClient
	model  string
	labels []string
	params models.InferenceParameters
}

// NewRemotePredictor builds a predictor for model. labels lists the model's
// id2label mapping in class id order.
func NewRemotePredictor(client *HuggingFaceClient, model string, labels []string, maxLength int) *RemotePredictor {
	params := models.InferenceParameters{
		FunctionToApply: "softmax",
		TopK:            len(labels),
	}
	if maxLength > 0 {
		params.Truncation = true
		params.Padding = true
		params.MaxLength = maxLength
	}
	return &RemotePredictor{client: client, model: model, labels: labels, params: params}
}

func (p *RemotePredictor) Predict(ctx context.Context, text string) ([]models.ClassScore, error) {
	out, err := p.client.Classify(ctx, p.model, models.TextClassificationRequest{
		Inputs:     text,
		Parameters: p.params,
		Options:    models.InferenceOptions{WaitForModel: true, UseCache: true},
	})
	if err != nil {
		return nil, err
	}

	scores := make([]models.ClassScore, 0, len(out))
	for _, o := range out {
		idx, label, err := resolveLabel(p.labels, o.Label)
		if err != nil {
			return nil, err
		}
		scores = append(scores, models.ClassScore{Index: idx, Label: label, Score: o.Score})
	}
	return scores, nil
}

// resolveLabel maps a model label to its class id and canonical name. Labels are
// matched case-insensitively against known names, then as LABEL_<id>.
func resolveLabel(labels []string, label string) (int, string, error) {
	for i, known := range labels {
		if strings.EqualFold(known, label) {
			return i, known, nil
		}
	}

	if rest, ok := strings.CutPrefix(strings.ToUpper(label), "LABEL_"); ok {
		if idx, err := strconv.Atoi(rest); err == nil && idx >= 0 {
			if idx < len(labels) {
				return idx, labels[idx], nil
			}
			return idx, label, nil
		}
	}

	return 0, "", fmt.Errorf("unknown class label %q", label)
}

func preview(respBody []byte) string {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return raw
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
