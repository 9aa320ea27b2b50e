package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

type HealthCheckFunc func(ctx context.Context) bool

// MonitorInferenceHealth probes an inference backend on every tick and stores
// the outcome in healthy. The first probe runs immediately.
func MonitorInferenceHealth(ctx context.Context, name string, interval time.Duration, healthy *atomic.Bool, check HealthCheckFunc) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		isHealthy := check(ctx)
		if healthy.Swap(isHealthy) != isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Inference backend recovered", slog.String("backend", name))
			} else {
				slog.Warn("[HealthCheck] Inference backend is unhealthy", slog.String("backend", name))
			}
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
