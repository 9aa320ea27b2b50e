package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spacesedan/sentisocial/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("not owner")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PgxPool is the subset of *pgxpool.Pool the repository uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) *Repository {
	return &Repository{pool: pool}
}

// clampPage applies the default page size and bounds skip/limit.
func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

func aiFieldTargets(f *models.AIFields) []any {
	return []any{
		&f.SentimentLabel,
		&f.SentimentConfidence,
		&f.IsSarcastic,
		&f.SarcasmConfidence,
		&f.AnalyzedAt,
	}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
