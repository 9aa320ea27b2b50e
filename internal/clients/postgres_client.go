package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spacesedan/sentisocial/config"
)

var (
	postgresInstance *Postgres
	postgresErr      error
	postgresOnce     sync.Once
)

type Postgres struct {
	DB *pgxpool.Pool
}

// GetPostgresClient connects the process-wide pool once and pings it.
func GetPostgresClient(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	postgresOnce.Do(func() {
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			postgresErr = fmt.Errorf("[PostgresClient] invalid dsn: %w", err)
			return
		}
		if cfg.MaxConns > 0 {
			poolCfg.MaxConns = cfg.MaxConns
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			postgresErr = fmt.Errorf("[PostgresClient] failed to create PostgreSQL client: %w", err)
			return
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			postgresErr = fmt.Errorf("[PostgresClient] failed to ping PostgreSQL: %w", err)
			return
		}

		slog.Info("[PostgresClient] Connected to PostgreSQL", slog.Int("max_conns", int(poolCfg.MaxConns)))
		postgresInstance = &Postgres{DB: pool}
	})

	return postgresInstance, postgresErr
}

func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		p.DB.Close()
	}
}
