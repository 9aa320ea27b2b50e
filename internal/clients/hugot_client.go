package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/sentisocial/internal/models"
)

// HugotClient owns the local inference session every pipeline runs on.
type HugotClient struct {
	session  *hugot.Session
	modelDir string
}

func NewHugotClient(modelDir string) (*HugotClient, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("[HugotClient] failed to create model directory: %w", err)
	}

	// Needs the onnxruntime shared library (/usr/lib/onnxruntime.so by default).
	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[HugotClient] failed to initialize session: %w", err)
	}

	slog.Info("[HugotClient] Inference session ready", slog.String("model_dir", modelDir))
	return &HugotClient{session: session, modelDir: modelDir}, nil
}

func (h *HugotClient) Close() error {
	if h.session == nil {
		return nil
	}
	return h.session.Destroy()
}

// ensureModel returns the local path of model, downloading it on first use.
func (h *HugotClient) ensureModel(model string) (string, error) {
	if info, err := os.Stat(model); err == nil && info.IsDir() {
		return model, nil
	}

	localPath := filepath.Join(h.modelDir, strings.ReplaceAll(model, "/", "_"))
	if _, err := os.Stat(localPath); err == nil {
		slog.Info("[HugotClient] Using existing model", slog.String("path", localPath))
		return localPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	slog.Info("[HugotClient] Model not found, downloading...", slog.String("model", model))
	downloaded, err := hugot.DownloadModel(model, h.modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("[HugotClient] failed to download %s: %w", model, err)
	}
	slog.Info("[HugotClient] Model downloaded successfully", slog.String("path", downloaded))
	return downloaded, nil
}

// LoadClassifier builds a text-classification pipeline that reports the softmax
// probability of every class. labels lists the model's id2label mapping.
func (h *HugotClient) LoadClassifier(name, model string, labels []string) (*HugotPredictor, error) {
	modelPath, err := h.ensureModel(model)
	if err != nil {
		return nil, err
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      name,
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
			pipelines.WithMultiLabel(),
		},
	}
	pipeline, err := hugot.NewPipeline(h.session, config)
	if err != nil {
		return nil, fmt.Errorf("[HugotClient] failed to initialize %s pipeline: %w", name, err)
	}

	slog.Info("[HugotClient] Classifier loaded",
		slog.String("name", name),
		slog.String("model", model))
	return &HugotPredictor{pipeline: pipeline, labels: labels}, nil
}

type HugotPredictor struct {
	mu       sync.Mutex
	pipeline *pipelines.TextClassificationPipeline
	labels   []string
}

func (p *HugotPredictor) Predict(_ context.Context, text string) ([]models.ClassScore, error) {
	p.mu.Lock()
	output, err := p.pipeline.RunPipeline([]string{text})
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(output.ClassificationOutputs) == 0 {
		return nil, nil
	}

	classes := output.ClassificationOutputs[0]
	scores := make([]models.ClassScore, 0, len(classes))
	for _, c := range classes {
		idx, label, err := resolveLabel(p.labels, c.Label)
		if err != nil {
			return nil, err
		}
		scores = append(scores, models.ClassScore{Index: idx, Label: label, Score: float64(c.Score)})
	}
	return scores, nil
}
