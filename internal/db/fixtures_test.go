package db

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var (
	postRowColumns = []string{"post_id", "user_id", "user_name", "title", "content", "created_at",
		"sentiment_label", "sentiment_confidence", "is_sarcastic", "sarcasm_confidence", "analyzed_at"}
	commentRowColumns = []string{"comment_id", "post_id", "user_id", "user_name", "content", "parent_comment_id", "created_at",
		"sentiment_label", "sentiment_confidence", "is_sarcastic", "sarcasm_confidence", "analyzed_at"}

	createdAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func ptr[T any](v T) *T { return &v }
