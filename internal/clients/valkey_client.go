package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/sentisocial/config"
	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_ANALYSIS_PREFIX = "analysis:processed"
	VALKEY_PROCESSED_TTL   = 24 * time.Hour
)

// ValkeyClient remembers which content versions the analyzer has already
// written back, so redelivered tasks can be skipped.
type ValkeyClient struct {
	Client valkey.Client
	cfg    config.ValkeyConfig
	mu     sync.RWMutex
}

func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig) (*ValkeyClient, error) {
	client, err := connectValkey(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ValkeyClient{Client: client, cfg: cfg}, nil
}

func connectValkey(ctx context.Context, cfg config.ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", cfg.Address))
	return client, nil
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.Client
}

func (vc *ValkeyClient) recreateClient(ctx context.Context) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(ctx, vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

// AnalysisKey identifies one version of a content row: the content hash changes
// with every edit, so an edited row is analyzed again.
func AnalysisKey(kind models.ContentKind, id int64, content string) string {
	sum := sha256.Sum256([]byte(content))
	return strings.Join([]string{
		VALKEY_ANALYSIS_PREFIX,
		string(kind),
		strconv.FormatInt(id, 10),
		hex.EncodeToString(sum[:]),
	}, ":")
}

func (vc *ValkeyClient) MarkProcessed(ctx context.Context, task models.AnalysisTask) error {
	key := AnalysisKey(task.Kind, task.ContentID, task.Content)
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Set().Key(key).Value(task.TaskID).ExSeconds(int64(VALKEY_PROCESSED_TTL/time.Second)).Build()
	}, 3)
	if err := res.Error(); err != nil {
		return err
	}

	slog.Debug("[ValkeyClient] Marked analysis as processed", slog.String("key", key))
	return nil
}

// IsProcessed reports false whenever valkey cannot answer, so a lookup failure
// costs one extra analysis rather than a lost one.
func (vc *ValkeyClient) IsProcessed(ctx context.Context, task models.AnalysisTask) bool {
	key := AnalysisKey(task.Kind, task.ContentID, task.Content)
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Exists().Key(key).Build()
	}, 3)

	n, err := res.AsInt64()
	if err != nil {
		return false
	}
	return n > 0
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c := vc.client()
		result = c.Do(ctx, build(c))
		if result.Error() == nil || valkey.IsValkeyNil(result.Error()) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		if isConnectionError(result.Error()) {
			vc.recreateClient(ctx)
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(250 * time.Millisecond):
		}
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
