package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SENTISOCIAL_AUTH__JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, 500, cfg.Models.CacheSize)
	assert.Equal(t, 256, cfg.Models.MaxLength)
	assert.Equal(t, DispatchModeLocal, cfg.Dispatch.Mode)
	assert.Equal(t, DefaultAnalysisTopic, cfg.Kafka.Topic)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"negative", "neutral", "positive"}, cfg.Models.SentimentLabels)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: "9000"
models:
  sentiment_backend: vader
  remote_timeout: 5s
dispatch:
  workers: 2
`), 0o600))

	t.Setenv("SENTISOCIAL_AUTH__JWT_SECRET", "s3cret")
	t.Setenv("SENTISOCIAL_APP__PORT", "9100")
	t.Setenv("SENTISOCIAL_DISPATCH__QUEUE_SIZE", "20")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.App.Port)
	assert.Equal(t, "vader", cfg.Models.SentimentBackend)
	assert.Equal(t, 5*time.Second, cfg.Models.RemoteTimeout)
	assert.Equal(t, 2, cfg.Dispatch.Workers)
	assert.Equal(t, 20, cfg.Dispatch.QueueSize)
	assert.Equal(t, "hugot", cfg.Models.SarcasmBackend)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SENTISOCIAL_AUTH__JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.App.Port)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret: required")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "s3cret"
	require.NoError(t, cfg.Validate())

	cfg.Models.SarcasmBackend = "vader"
	cfg.Dispatch.Mode = "carrier-pigeon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models.sarcasm_backend")
	assert.Contains(t, err.Error(), "dispatch.mode")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.dsn", envKey("SENTISOCIAL_DATABASE__DSN"))
	assert.Equal(t, "models.max_length", envKey("SENTISOCIAL_MODELS__MAX_LENGTH"))
}
