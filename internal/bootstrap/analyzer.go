package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spacesedan/sentisocial/config"
	"github.com/spacesedan/sentisocial/internal/analysis"
	"github.com/spacesedan/sentisocial/internal/clients"
	"github.com/spacesedan/sentisocial/internal/monitoring"
	"github.com/spacesedan/sentisocial/internal/sentiment"
)

const (
	BackendHugot  = "hugot"
	BackendRemote = "remote"
	BackendVader  = "vader"
)

// Inference is the loaded moderation pipeline plus what it takes to watch and
// release its backends.
type Inference struct {
	Analyzer *analysis.Analyzer
	// HealthCheck probes the remote endpoint; nil when every model runs in process.
	HealthCheck monitoring.HealthCheckFunc

	hugot *clients.HugotClient
}

// BuildAnalyzer loads both classifiers. Any load failure is returned and the
// caller is expected to abort startup.
func BuildAnalyzer(ctx context.Context, cfg config.ModelsConfig) (*Inference, error) {
	inf := &Inference{}
	var remote *clients.HuggingFaceClient

	hugotClient := func() (*clients.HugotClient, error) {
		if inf.hugot == nil {
			hc, err := clients.NewHugotClient(cfg.ModelDir)
			if err != nil {
				return nil, err
			}
			inf.hugot = hc
		}
		return inf.hugot, nil
	}
	remoteClient := func() *clients.HuggingFaceClient {
		if remote == nil {
			remote = clients.NewHuggingFaceClient(ctx, cfg.RemoteBaseURL, cfg.RemoteToken, cfg.RemoteTimeout)
			inf.HealthCheck = remote.HealthCheck
		}
		return remote
	}

	var sentimentPredictor analysis.Predictor
	switch cfg.SentimentBackend {
	case BackendHugot:
		hc, err := hugotClient()
		if err != nil {
			return nil, err
		}
		p, err := hc.LoadClassifier("sentiment", cfg.SentimentModel, cfg.SentimentLabels)
		if err != nil {
			inf.Close()
			return nil, err
		}
		sentimentPredictor = p
	case BackendRemote:
		sentimentPredictor = clients.NewRemotePredictor(remoteClient(), cfg.SentimentModel, cfg.SentimentLabels, 0)
	case BackendVader:
		sentimentPredictor = sentiment.NewVaderPredictor()
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q", cfg.SentimentBackend)
	}

	var sarcasmPredictor analysis.Predictor
	switch cfg.SarcasmBackend {
	case BackendHugot:
		hc, err := hugotClient()
		if err != nil {
			inf.Close()
			return nil, err
		}
		p, err := hc.LoadClassifier("sarcasm", cfg.SarcasmModel, cfg.SarcasmLabels)
		if err != nil {
			inf.Close()
			return nil, err
		}
		sarcasmPredictor = p
	case BackendRemote:
		sarcasmPredictor = clients.NewRemotePredictor(remoteClient(), cfg.SarcasmModel, cfg.SarcasmLabels, cfg.MaxLength)
	default:
		inf.Close()
		return nil, fmt.Errorf("unknown sarcasm backend %q", cfg.SarcasmBackend)
	}

	analyzer, err := analysis.NewAnalyzerFromPredictors(sentimentPredictor, sarcasmPredictor, cfg.CacheSize)
	if err != nil {
		inf.Close()
		return nil, err
	}
	inf.Analyzer = analyzer

	slog.Info("[Bootstrap] Moderation pipeline ready",
		slog.String("sentiment_backend", cfg.SentimentBackend),
		slog.String("sarcasm_backend", cfg.SarcasmBackend),
		slog.Int("cache_size", cfg.CacheSize))
	return inf, nil
}

func (i *Inference) Close() error {
	var errs []error
	if i.hugot != nil {
		errs = append(errs, i.hugot.Close())
		i.hugot = nil
	}
	return errors.Join(errs...)
}
